package domain

// SuccessStatus is the status code DataCash returns for an accepted transaction.
const SuccessStatus = "1"

// Response is the normalized outcome of a gateway call.
type Response struct {
	Success       bool              `json:"success"`
	Message       string            `json:"message"`
	Params        map[string]string `json:"params"`
	Authorization string            `json:"authorization"`
	Test          bool              `json:"test"`
}

// Status returns the raw status field, or "" when absent.
func (r *Response) Status() string {
	return r.Params["status"]
}

// Token parses the authorization string into its components.
func (r *Response) Token() AuthorizationToken {
	return ParseAuthorizationToken(r.Authorization)
}
