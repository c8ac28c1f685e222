package logger

import "time"

// Common field constructors for structured logging

// String creates a string field
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Duration creates a duration field in milliseconds
func Duration(key string, d time.Duration) Field {
	return Field{Key: key, Value: d.Milliseconds()}
}

// Any creates a field with any value
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Method creates an http method field
func Method(method string) Field {
	return Field{Key: "method", Value: method}
}

// Path creates a path field
func Path(path string) Field {
	return Field{Key: "path", Value: path}
}

// Status creates a status field
func Status(status int) Field {
	return Field{Key: "status", Value: status}
}

// RemoteIP creates a remote_ip field
func RemoteIP(ip string) Field {
	return Field{Key: "remote_ip", Value: ip}
}

// --- Domain-specific field helpers ---

// UserID creates a user_id field
func UserID(id string) Field {
	return Field{Key: "user_id", Value: id}
}

// Username creates a username field
func Username(username string) Field {
	return Field{Key: "username", Value: username}
}

// ContentID creates a content_id field
func ContentID(id string) Field {
	return Field{Key: "content_id", Value: id}
}

// Vertical creates a vertical field
func Vertical(name string) Field {
	return Field{Key: "vertical", Value: name}
}

// Section creates a section field
func Section(name string) Field {
	return Field{Key: "section", Value: name}
}

// TemplatePath creates a template_path field
func TemplatePath(path string) Field {
	return Field{Key: "template_path", Value: path}
}

// Component creates a component field
func Component(name string) Field {
	return Field{Key: "component", Value: name}
}
