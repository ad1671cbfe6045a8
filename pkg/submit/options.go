package submit

import (
	"net/http"
	"time"

	"github.com/goliatone/go-formwizard/pkg/payload"
	"github.com/goliatone/go-formwizard/pkg/render"
)

// DefaultTimeout bounds a single submission.
const DefaultTimeout = 30 * time.Second

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithHTTPClient overrides the client used for the POST.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Coordinator) {
		if client != nil {
			c.client = client
		}
	}
}

// WithTimeout bounds each submission. Non-positive values keep the default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Coordinator) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithEndpoint overrides the definition's submit URL.
func WithEndpoint(url string) Option {
	return func(c *Coordinator) {
		if url != "" {
			c.endpoint = url
		}
	}
}

// WithContract checks payloads before sending. In strict mode a violation
// aborts the submission; otherwise it is only logged.
func WithContract(contract *payload.Contract, strict bool) Option {
	return func(c *Coordinator) {
		c.contract = contract
		c.strict = strict
	}
}

// WithTranslator localises control labels and notifications.
func WithTranslator(t render.Translator, locale string) Option {
	return func(c *Coordinator) {
		c.translator = t
		c.locale = locale
	}
}
