package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/ignite/group-mailer/internal/pkg/logger"
)

// ErrSend marks an email transport failure.
var ErrSend = errors.New("email send failed")

// Email is one outbound message. All recipients ride as blind copies on a
// single send, so no recipient learns another's address.
type Email struct {
	BCC      []string
	Subject  string
	HTMLBody string
}

// SESAPI is the SES v2 client surface the sender consumes.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends email via AWS SES v2.
type SESSender struct {
	client SESAPI
	source string
}

// NewSESSender creates a sender delivering from the given source address.
func NewSESSender(client SESAPI, source string) *SESSender {
	return &SESSender{client: client, source: source}
}

// Send delivers one email to all BCC recipients in a single SES call.
// Provider payload limits on recipient count are not handled here.
func (s *SESSender) Send(ctx context.Context, email Email) error {
	logger.Info("sending email", "recipients", len(email.BCC), "subject", email.Subject)

	result, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.source),
		Destination: &types.Destination{
			BccAddresses: email.BCC,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(email.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(email.HTMLBody), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}

	messageID := ""
	if result.MessageId != nil {
		messageID = *result.MessageId
	}
	logger.Info("email sent", "message_id", messageID)

	return nil
}
