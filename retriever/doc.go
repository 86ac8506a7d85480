// Package retriever resolves CloudObjects objects and their attachments.
//
// A Retriever consults, in order, a process-local map, an optional static
// snapshot directory, an optional external store, and finally the Object
// API. Objects are described by JSON-LD documents; each resolved Object
// wraps the graph node named by its COID plus its revision token.
//
// Freshness is driven by markers. A caller that knows the current revision
// of an object (for example from a webhook) attaches it with WithFreshness;
// a stored entry is served only when its marker matches. Without a marker
// the remote API is consulted unless Config.TrustCache is set.
//
// Absence is not an error: Object returns (nil, nil) and Attachment
// returns (nil, false, nil) for identifiers the API does not know or cannot
// serve right now. Bulk namespace listing is the exception and reports
// ErrRemoteService, because an empty list would be indistinguishable from
// an empty namespace.
//
//	r, err := retriever.New(cfg)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	obj, err := r.Get(ctx, "coid://cloudobjects.io/isAtRevision")
package retriever
