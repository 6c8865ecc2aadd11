package scraper

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// State identifies how far a verification attempt has progressed.
type State int

const (
	StateNotStarted State = iota
	StateFetching
	StateMatching
	StateVerified
	StateRejected
	StateErrored
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateFetching:
		return "fetching"
	case StateMatching:
		return "matching"
	case StateVerified:
		return "verified"
	case StateRejected:
		return "rejected"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Verdict is the outcome of a verification attempt. Errored is externally
// indistinguishable from Rejected, both mean "not verified", but the two
// are logged at different levels for operability.
type Verdict int

const (
	VerdictRejected Verdict = iota
	VerdictVerified
	VerdictErrored
)

// Verified reports whether the attempt passed.
func (v Verdict) Verified() bool { return v == VerdictVerified }

// Verifier composes the fetcher, extractor and matcher into a single
// pass/fail decision. Each call is a fresh, single-shot attempt: there is
// no retry, no backoff and no resumption, and nothing propagates to the
// caller as an error.
type Verifier struct {
	fetcher   *Fetcher
	extractor *Extractor
	matcher   *Matcher
	logger    *zap.Logger
}

// NewVerifier wires the pipeline together.
func NewVerifier(fetcher *Fetcher, extractor *Extractor, matcher *Matcher, logger *zap.Logger) *Verifier {
	return &Verifier{
		fetcher:   fetcher,
		extractor: extractor,
		matcher:   matcher,
		logger:    logger,
	}
}

// Verify decides whether claimedName left a review on the product's
// storefront page. It fails closed: any transport or parse failure yields
// a not-verified verdict rather than an error.
func (v *Verifier) Verify(ctx context.Context, productURL, claimedName string) Verdict {
	state := StateNotStarted

	if strings.TrimSpace(productURL) == "" || strings.TrimSpace(claimedName) == "" {
		v.logger.Info("verification rejected before fetch: missing input",
			zap.Stringer("state", state))
		return VerdictRejected
	}

	state = StateFetching
	page, err := v.fetcher.Fetch(ctx, productURL)
	if err != nil {
		// Bad status, connection failure and timeout all land here; the
		// caller cannot tell them apart from "review not found".
		v.logger.Info("verification rejected: fetch failed",
			zap.Stringer("state", state),
			zap.String("product_url", productURL),
			zap.Error(err))
		return VerdictRejected
	}

	state = StateMatching
	extraction, err := v.extractor.Extract(page)
	if err != nil {
		v.logger.Error("verification errored: page extraction failed",
			zap.Stringer("state", state),
			zap.String("product_url", productURL),
			zap.Error(err))
		return VerdictErrored
	}

	if v.matcher.Match(claimedName, extraction.Candidates, extraction.BodyText) {
		state = StateVerified
		v.logger.Info("verification passed",
			zap.Stringer("state", state),
			zap.String("product_url", productURL),
			zap.Int("candidates", len(extraction.Candidates)))
		return VerdictVerified
	}

	state = StateRejected
	v.logger.Info("verification rejected: reviewer name not found",
		zap.Stringer("state", state),
		zap.String("product_url", productURL),
		zap.Int("candidates", len(extraction.Candidates)))
	return VerdictRejected
}
