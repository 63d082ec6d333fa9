package datacash

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"datacash/internal/gateway/domain"
)

// ErrEmptyDocument is returned by Parse when the body holds no root element.
var ErrEmptyDocument = errors.New("response document has no root element")

var (
	acronymBoundary = regexp.MustCompile(`([A-Z\d]+)([A-Z][a-z])`)
	wordBoundary    = regexp.MustCompile(`([a-z\d])([A-Z])`)
)

// node is an element of the decoded response tree.
type node struct {
	name     string
	text     strings.Builder
	children []*node
}

// Parse flattens a response document into a field map.
//
// Leaf elements contribute name -> text, where name is the tag converted to
// snake_case. Elements with children contribute nothing themselves. When the
// same name occurs more than once, the occurrence later in document order wins.
//
// The returned map is never nil. On a malformed or empty document it is empty
// and the error describes why.
func Parse(body string) (map[string]string, error) {
	params := make(map[string]string)

	root, err := decodeTree(strings.NewReader(body))
	if err != nil {
		return params, err
	}

	for _, child := range root.children {
		flatten(params, child)
	}
	return params, nil
}

// ParseResponse parses body into a normalized Response. It never fails: a
// document that cannot be parsed yields an unsuccessful Response with no message.
func ParseResponse(body string, test bool) *domain.Response {
	params, _ := Parse(body)
	return NewResponse(params, test)
}

// NewResponse derives the normalized result from a flattened field map.
func NewResponse(params map[string]string, test bool) *domain.Response {
	token := domain.AuthorizationToken{
		Reference:   params["datacash_reference"],
		AuthCode:    params["authcode"],
		CAReference: params["ca_reference"],
	}
	return &domain.Response{
		Success:       params["status"] == domain.SuccessStatus,
		Message:       params["reason"],
		Params:        params,
		Authorization: token.String(),
		Test:          test,
	}
}

func flatten(params map[string]string, n *node) {
	if len(n.children) == 0 {
		params[normalizeName(n.name)] = n.text.String()
		return
	}
	for _, child := range n.children {
		flatten(params, child)
	}
}

// normalizeName converts a tag name such as "CardTxn" or "Cv2Avs" to "card_txn" / "cv2_avs".
func normalizeName(name string) string {
	s := acronymBoundary.ReplaceAllString(name, "${1}_${2}")
	s = wordBoundary.ReplaceAllString(s, "${1}_${2}")
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ToLower(s)
}

// decodeTree reads the first root element and everything below it.
func decodeTree(r io.Reader) (*node, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	var root *node
	var stack []*node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			if root == nil {
				return nil, ErrEmptyDocument
			}
			return nil, fmt.Errorf("decoding response: %w", io.ErrUnexpectedEOF)
		}
		if err != nil {
			return nil, fmt.Errorf("decoding response: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local}
			if len(stack) == 0 {
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return root, nil
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}
}

// charsetReader decodes responses declared in a non-UTF-8 encoding.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported response charset %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}
