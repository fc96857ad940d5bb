// api/model/request.go
package model

// Request is the generic inbound operation handed to the lifecycle engine by
// the transport layer.
type Request struct {
	Verb             Verb
	TargetPath       string
	RequestingEntity string
	Representation   []byte
}

// Response is the generic outcome of one request. Body is the encoded
// resource snapshot on success, or an encoded error detail on failure.
type Response struct {
	StatusCode int
	Body       []byte
}

// ErrorBody is the wire shape of a failure response.
type ErrorBody struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}
