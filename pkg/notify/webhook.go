package notify

import (
	"context"
	"fmt"
	"time"

	imrocreq "github.com/imroc/req/v3"
)

// WebhookNotifier posts events to the notification subsystem's fan-out
// endpoint. The subsystem owns delivery channels (WhatsApp, email); this
// side only fires the event.
type WebhookNotifier struct {
	url string
	req *imrocreq.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	client := imrocreq.C().
		SetTimeout(10 * time.Second).
		SetCommonRetryCount(2).
		SetCommonRetryFixedInterval(time.Second)
	return &WebhookNotifier{url: url, req: client}
}

func (n *WebhookNotifier) Dispatch(ctx context.Context, ev Event) error {
	resp, err := n.req.R().
		SetContext(ctx).
		SetBodyJsonMarshal(ev).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("webhook dispatch %s: %w", ev.ID, err)
	}
	if resp.IsErrorState() {
		return fmt.Errorf("webhook dispatch %s: unexpected status %s", ev.ID, resp.Status)
	}
	return nil
}
