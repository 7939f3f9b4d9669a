package logger

import "log/slog"

// Error records a single error under the key "error".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// TenantID records the tenant identifier under the key "tenant_id".
func TenantID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("tenant_id", id)
}

// CustomerID records the owning customer identifier under the key "customer_id".
func CustomerID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("customer_id", id)
}

// Database records the database name a query or migration ran against.
func Database(name string) slog.Attr {
	return slog.String("database", name)
}

// Subdomain records the tenant subdomain under the key "subdomain".
func Subdomain(s string) slog.Attr {
	return slog.String("subdomain", s)
}

// RequestID records the request identifier under the key "request_id".
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}
