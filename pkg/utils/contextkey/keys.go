package contextkey

// key is a private type to avoid context key collisions across packages.
type key string

const (
	InvocationID key = "invocation_id"
	Endpoint     key = "endpoint"
	Session      key = "session"
)
