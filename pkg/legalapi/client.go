package legalapi

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gtonic/legalapi-cli/pkg/apierror"
	"github.com/gtonic/legalapi-cli/pkg/openapi"
	"github.com/gtonic/legalapi-cli/pkg/openapi/catalog"
	"github.com/gtonic/legalapi-cli/pkg/rest"
)

const DefaultBaseURL = "https://legal-api.sirotinsky.com"

// Client is a schema-driven API client: at construction it loads the remote
// OpenAPI description, indexes every operation, and from then on dispatches
// calls by operation id or by keyword resolution. The catalog is immutable
// after New, so a Client is safe for concurrent use.
type Client struct {
	catalog *catalog.Catalog

	rest *rest.Client
}

type settings struct {
	baseURL string

	timeout time.Duration
	retries int
	backoff time.Duration

	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*settings)

func WithBaseURL(baseURL string) Option {
	return func(s *settings) {
		s.baseURL = baseURL
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		s.timeout = timeout
	}
}

func WithRetries(retries int) Option {
	return func(s *settings) {
		s.retries = retries
	}
}

func WithBackoff(backoff time.Duration) Option {
	return func(s *settings) {
		s.backoff = backoff
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) {
		s.httpClient = client
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// New fetches the schema, builds the operation catalog and returns a ready
// client. Any failure here is terminal: there is no partially-usable client.
func New(ctx context.Context, token string, options ...Option) (*Client, error) {
	s := &settings{
		baseURL: DefaultBaseURL,

		timeout: rest.DefaultTimeout,
		retries: rest.DefaultRetries,
		backoff: rest.DefaultBackoff,
	}

	for _, o := range options {
		o(s)
	}

	loadOptions := []openapi.Option{
		openapi.WithBearer(token),
	}

	if s.httpClient != nil {
		loadOptions = append(loadOptions, openapi.WithHTTPClient(s.httpClient))
	}

	doc, err := openapi.Load(ctx, s.baseURL, loadOptions...)

	if err != nil {
		return nil, err
	}

	cat, err := catalog.Build(doc)

	if err != nil {
		return nil, err
	}

	restOptions := []rest.Option{
		rest.WithBearer(token),
		rest.WithTimeout(s.timeout),
		rest.WithRetries(s.retries),
		rest.WithBackoff(s.backoff),
	}

	if s.httpClient != nil {
		restOptions = append(restOptions, rest.WithHTTPClient(s.httpClient))
	}

	if s.logger != nil {
		restOptions = append(restOptions, rest.WithLogger(s.logger))
	}

	rc, err := rest.New(s.baseURL, restOptions...)

	if err != nil {
		return nil, err
	}

	c := &Client{
		catalog: cat,

		rest: rc,
	}

	return c, nil
}

// Call executes the operation with the given id.
func (c *Client) Call(ctx context.Context, id string, args rest.Args) (*rest.Result, error) {
	op, ok := c.catalog.Lookup(id)

	if !ok {
		return nil, apierror.New(apierror.KindUnknownOperation, "unknown operation %q", id)
	}

	return c.rest.Execute(ctx, op.Method, op.Path, args)
}

// Invoke returns a bound callable for the given id, or false if the id is
// absent. This replaces attribute-style dispatch with an explicit lookup.
func (c *Client) Invoke(id string) (func(context.Context, rest.Args) (*rest.Result, error), bool) {
	if _, ok := c.catalog.Lookup(id); !ok {
		return nil, false
	}

	call := func(ctx context.Context, args rest.Args) (*rest.Result, error) {
		return c.Call(ctx, id, args)
	}

	return call, true
}

// Operations lists every known operation id in lexicographic order.
func (c *Client) Operations() []string {
	return c.catalog.IDs()
}

func (c *Client) Operation(id string) (catalog.Operation, bool) {
	return c.catalog.Lookup(id)
}

func (c *Client) Catalog() *catalog.Catalog {
	return c.catalog
}

// Collisions reports how many duplicate operation ids the schema carried.
func (c *Client) Collisions() int {
	return c.catalog.Collisions()
}

// EFRSBMethods returns the operations that look EFRSB-related. Diagnostics
// aid for callers of the convenience methods.
func (c *Client) EFRSBMethods() []catalog.Operation {
	return c.catalog.Hints()
}

// SearchEFRSB resolves and calls the registry search operation. Typical
// query filters: inn, ogrn, name, case number, date range.
func (c *Client) SearchEFRSB(ctx context.Context, query url.Values) (*rest.Result, error) {
	return c.resolveCall(ctx, searchKeywords, rest.Args{Query: query})
}

// Debtor resolves and calls the debtor lookup operation. Pass the identifier
// via args.Path for /efrsb/debtors/{id}-style operations or via args.Query
// when it travels in the query string.
func (c *Client) Debtor(ctx context.Context, args rest.Args) (*rest.Result, error) {
	return c.resolveCall(ctx, debtorKeywords, args)
}

// Case resolves and calls the bankruptcy case lookup operation.
func (c *Client) Case(ctx context.Context, args rest.Args) (*rest.Result, error) {
	return c.resolveCall(ctx, caseKeywords, args)
}

// Notices resolves and calls the notice/publication listing operation.
// Typical query filters: inn, notice type, publication date, limit, offset.
func (c *Client) Notices(ctx context.Context, query url.Values) (*rest.Result, error) {
	return c.resolveCall(ctx, noticeKeywords, rest.Args{Query: query})
}

func (c *Client) resolveCall(ctx context.Context, keywords []string, args rest.Args) (*rest.Result, error) {
	op, err := c.catalog.Resolve(keywords...)

	if err != nil {
		return nil, err
	}

	return c.rest.Execute(ctx, op.Method, op.Path, args)
}
