package core

import "context"

type clientKey struct{}

// Client identifies who triggered an operation. It is attached to import
// and rollback log lines.
type Client struct {
	IP        string
	UserAgent string
}

// WithClient stores c on ctx.
func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

// ClientFrom returns the Client stored by WithClient, or the zero value.
func ClientFrom(ctx context.Context) Client {
	c, _ := ctx.Value(clientKey{}).(Client)
	return c
}

func (c Client) logArgs() []any {
	var args []any
	if c.IP != "" {
		args = append(args, "client_ip", c.IP)
	}
	if c.UserAgent != "" {
		args = append(args, "user_agent", c.UserAgent)
	}
	return args
}
