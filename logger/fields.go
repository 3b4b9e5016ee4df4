package logger

// Standard field key constants for structured logging.
const (
	FieldComponent = "component"
	FieldUserID    = "user_id"
	FieldSessionID = "session_id"
	FieldIssuer    = "issuer"
	FieldAuthID    = "auth_id"
	FieldRoles     = "roles"
	FieldContext   = "permission_context"
	FieldOperation = "operation"
	FieldStatus    = "status"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Info("access denied", logger.Fields(logger.FieldContext, "posts"))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}
