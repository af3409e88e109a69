package notifier

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/model"
	"github.com/vasapolrittideah/property-listing-api/shared/mailer"
)

// DealerNotifier informs a listing's dealer that it was published.
type DealerNotifier interface {
	ListingCreated(ctx context.Context, variant model.Variant, listing *model.Listing) error
}

// EmailSender is satisfied by *mailer.Mailer.
type EmailSender interface {
	Send(email mailer.Email) error
}

// MailDealerNotifier emails propertyDealerEmail when a listing is created.
type MailDealerNotifier struct {
	sender EmailSender
}

func NewMailDealerNotifier(sender EmailSender) *MailDealerNotifier {
	return &MailDealerNotifier{sender: sender}
}

func (n *MailDealerNotifier) ListingCreated(_ context.Context, variant model.Variant, listing *model.Listing) error {
	if strings.TrimSpace(listing.PropertyDealerEmail) == "" {
		return nil
	}

	title := listing.Title
	if title == "" {
		title = "Untitled property"
	}

	greeting := "Hello"
	if listing.PropertyDealerName != "" {
		greeting = "Hello " + listing.PropertyDealerName
	}

	text := fmt.Sprintf("%s,\n\nThe %s listing %q (%s) is now published.\n", greeting, variant.Name, title, listing.ID.Hex())
	htmlBody := fmt.Sprintf(
		"<p>%s,</p><p>The %s listing <strong>%s</strong> (%s) is now published.</p>",
		html.EscapeString(greeting),
		html.EscapeString(variant.Name),
		html.EscapeString(title),
		listing.ID.Hex(),
	)

	return n.sender.Send(mailer.Email{
		To:       []string{listing.PropertyDealerEmail},
		Subject:  "Your listing is live: " + title,
		Body:     text,
		HTMLBody: htmlBody,
	})
}

// NopDealerNotifier does nothing.
type NopDealerNotifier struct{}

func (NopDealerNotifier) ListingCreated(context.Context, model.Variant, *model.Listing) error { return nil }
