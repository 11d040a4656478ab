package ports

import "context"

type Message struct {
	From     string
	To       []string
	Subject  string
	HTMLBody string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
