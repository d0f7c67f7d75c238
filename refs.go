package ipfsapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	oaerrors "github.com/go-openapi/errors"
	"github.com/go-openapi/swag"
	"github.com/go-openapi/validate"
	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
)

// DefaultRefsFormat is the daemon's default output format for refs.
const DefaultRefsFormat = "<dst>"

// RefEntry is one reference reported by [Client.Refs] or [Client.RefsLocal].
//
// When the daemon cannot resolve part of the graph it reports the failure
// in Err instead of failing the whole call.
type RefEntry struct {
	// Ref is the referenced hash, or the formatted edge when
	// [RefsOptions.Edges] or [RefsOptions.Format] was set.
	Ref string `json:"Ref"`

	// Err is the per-entry error message, empty on success.
	Err string `json:"Err"`
}

// Failed reports whether the daemon returned an error for this entry.
func (r *RefEntry) Failed() bool {
	return r.Err != ""
}

// Cid decodes Ref as a content identifier.
//
// It fails for entries produced with a custom format, since Ref then holds
// more than a single hash.
func (r *RefEntry) Cid() (cid.Cid, error) {
	if r.Failed() {
		return cid.Undef, fmt.Errorf("ref entry failed: %s", r.Err)
	}
	return cid.Parse(r.Ref)
}

// HashFunction returns the name of the multihash function used by Ref,
// such as "sha2-256".
func (r *RefEntry) HashFunction() (string, error) {
	c, err := r.Cid()
	if err != nil {
		return "", err
	}
	dec, err := mh.Decode(c.Hash())
	if err != nil {
		return "", err
	}
	return dec.Name, nil
}

// RefsOptions configures [Client.Refs].
//
// A nil *RefsOptions lists the direct references of the object.
type RefsOptions struct {
	// Recursive lists the links of child nodes as well.
	Recursive bool

	// Unique omits duplicate refs from the output.
	Unique bool

	// Edges emits "<src> -> <dst>" pairs. Cannot be combined with a
	// custom Format.
	Edges bool

	// Format is the output template. Available tokens are <src>, <dst>
	// and <linkname>. Empty means [DefaultRefsFormat].
	Format string

	// MaxDepth limits a recursive listing to the given depth. -1 means
	// unlimited; nil leaves the daemon default.
	MaxDepth *int64
}

func (o *RefsOptions) validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	if o.Edges && o.Format != "" && o.Format != DefaultRefsFormat {
		errs = append(errs, oaerrors.New(400, "using format argument with edges is not allowed"))
	}
	if o.MaxDepth != nil {
		if v := validate.MinimumInt("max-depth", "query", *o.MaxDepth, -1, false); v != nil {
			errs = append(errs, v)
		}
	}
	return errs
}

func (o *RefsOptions) values() url.Values {
	q := url.Values{}
	if o == nil {
		return q
	}
	if o.Recursive {
		q.Set("recursive", swag.FormatBool(true))
	}
	if o.Unique {
		q.Set("unique", swag.FormatBool(true))
	}
	if o.Edges {
		q.Set("edges", swag.FormatBool(true))
	}
	if o.Format != "" && o.Format != DefaultRefsFormat {
		q.Set("format", o.Format)
	}
	if o.MaxDepth != nil {
		q.Set("max-depth", swag.FormatInt64(*o.MaxDepth))
	}
	return q
}

// refsCall validates the arguments of a refs call.
//
// ipfsPath is either a path ("/ipfs/<cid>/sub", "/ipns/<name>") or a bare
// CID, which is checked locally.
func refsCall(ipfsPath string, opts *RefsOptions) (*call, error) {
	ipfsPath = strings.TrimSpace(ipfsPath)

	var errs []error
	if v := validate.RequiredString("ipfs-path", "query", ipfsPath); v != nil {
		errs = append(errs, v)
	} else if !strings.HasPrefix(ipfsPath, "/") {
		if _, err := cid.Parse(ipfsPath); err != nil {
			errs = append(errs, oaerrors.New(400, "ipfs-path %q is not a valid CID: %v", ipfsPath, err))
		}
	}
	errs = append(errs, opts.validate()...)
	if len(errs) > 0 {
		return nil, validationError(errs...)
	}

	return &call{endpoint: "/refs", args: []string{ipfsPath}, opts: opts.values()}, nil
}

// Refs returns the hashes of objects referenced by ipfsPath.
//
// You likely want the object links API for anything beyond listing; this
// API is subject to future change or removal.
//
//	refs, err := client.Refs(ctx, "QmTkzDwWqPbnAh5YiV5VwcTLnGdwSNsNTn2aDxdXBFca7D", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, r := range refs {
//	    fmt.Println(r.Ref)
//	}
//
// Recursive listing:
//
//	refs, err := client.Refs(ctx, "/ipfs/Qm...", &ipfsapi.RefsOptions{
//	    Recursive: true,
//	    Unique:    true,
//	    MaxDepth:  swag.Int64(2),
//	})
//
// The client timeout applies to the whole listing. For large graphs use
// [Client.RefsStream].
func (c *Client) Refs(ctx context.Context, ipfsPath string, opts *RefsOptions) ([]RefEntry, error) {
	cl, err := refsCall(ipfsPath, opts)
	if err != nil {
		return nil, err
	}
	return c.collectRefs(ctx, cl)
}

// RefsStream is like [Client.Refs] but yields entries as the daemon
// produces them. The caller must close the returned stream.
func (c *Client) RefsStream(ctx context.Context, ipfsPath string, opts *RefsOptions) (*RefStream, error) {
	cl, err := refsCall(ipfsPath, opts)
	if err != nil {
		return nil, err
	}
	return openStream[RefEntry](ctx, c, cl)
}

// RefsLocal returns the hashes of all objects in the daemon's local store.
//
// This API is subject to future change or removal.
func (c *Client) RefsLocal(ctx context.Context) ([]RefEntry, error) {
	return c.collectRefs(ctx, &call{endpoint: "/refs/local"})
}

// RefsLocalStream is like [Client.RefsLocal] but yields entries as the
// daemon produces them. The caller must close the returned stream.
func (c *Client) RefsLocalStream(ctx context.Context) (*RefStream, error) {
	return openStream[RefEntry](ctx, c, &call{endpoint: "/refs/local"})
}

func (c *Client) collectRefs(ctx context.Context, cl *call) ([]RefEntry, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	stream, err := openStream[RefEntry](ctx, c, cl)
	if err != nil {
		return nil, err
	}
	refs, err := stream.Collect()
	if err != nil {
		// A read cut short by the client timeout or cancellation reports
		// the context error, like the other non-streaming calls.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, c.handleError(ctxErr, "failed to read "+cl.endpoint)
		}
		return nil, err
	}
	return refs, nil
}
