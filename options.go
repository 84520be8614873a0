package s3rver

// Options is the resolved configuration record a Server runs with.
// Construct one with New, which merges defaults with whatever Option
// values are supplied (Design Note: "global options merged into an
// instance" — a pure (defaults, overrides) -> resolved function).
type Options struct {
	Hostname     string
	HostSuffixes []string // e.g. ".s3.amazonaws.com"; hosts ending in one of these resolve host-style regardless of bucket existence
	Port         int // 0 means OS-assigned
	Silent       bool
	Directory    string // data root; defaults to an OS temp subpath

	Key  []byte // TLS private key, PEM
	Cert []byte // TLS certificate, PEM

	CORSDisabled bool
	CORS         []byte // raw <CORSConfiguration> XML applied to every bucket at startup

	IndexDocument string
	ErrorDocument string

	RemoveBucketsOnClose bool
}

// Option mutates an in-progress Options record during New.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Hostname: "localhost",
		Port:     0,
	}
}

// WithHostname sets the hostname used for host-style bucket resolution.
func WithHostname(hostname string) Option {
	return func(o *Options) { o.Hostname = hostname }
}

// WithHostSuffixes configures host-style bucket resolution for hosts
// matching one of these suffixes (e.g. ".s3.amazonaws.com"), per §4.7 —
// the bucket is taken as everything before the suffix regardless of
// whether it's a known bucket name, in addition to the existing
// known-bucket-name fallback.
func WithHostSuffixes(suffixes []string) Option {
	return func(o *Options) { o.HostSuffixes = suffixes }
}

// WithPort sets the TCP port to bind. Port 0 asks the OS for one.
func WithPort(port int) Option {
	return func(o *Options) { o.Port = port }
}

// WithSilent suppresses logging below warning level.
func WithSilent(silent bool) Option {
	return func(o *Options) { o.Silent = silent }
}

// WithDirectory sets the data root. It is created if absent.
func WithDirectory(dir string) Option {
	return func(o *Options) { o.Directory = dir }
}

// WithTLS supplies PEM-encoded key/cert material. When both are
// non-empty the server serves HTTPS instead of plain HTTP.
func WithTLS(key, cert []byte) Option {
	return func(o *Options) {
		o.Key = key
		o.Cert = cert
	}
}

// WithCORS sets the default CORS configuration applied to every
// bucket at startup. Pass disabled=true to disable CORS entirely; with
// disabled=false, a nil raw keeps the built-in wildcard configuration.
func WithCORS(disabled bool, raw []byte) Option {
	return func(o *Options) {
		o.CORSDisabled = disabled
		o.CORS = raw
	}
}

// WithWebsite enables server-wide static-website mode: any bucket
// lacking its own website configuration falls back to these documents.
func WithWebsite(indexDocument, errorDocument string) Option {
	return func(o *Options) {
		o.IndexDocument = indexDocument
		o.ErrorDocument = errorDocument
	}
}

// WithRemoveBucketsOnClose recursively empties the data root on Close
// while preserving the root directory itself.
func WithRemoveBucketsOnClose(remove bool) Option {
	return func(o *Options) { o.RemoveBucketsOnClose = remove }
}
