package transport

// CORS headers attached to every response, success or error. The gateway
// is meant to sit behind browser clients, so the policy is wide open.
const (
	corsAllowOrigin  = "*"
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization"
)

// corsHeaders returns the CORS header set as a plain map, shared by the
// HTTP and Lambda adapters.
func corsHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  corsAllowOrigin,
		"Access-Control-Allow-Methods": corsAllowMethods,
		"Access-Control-Allow-Headers": corsAllowHeaders,
	}
}
