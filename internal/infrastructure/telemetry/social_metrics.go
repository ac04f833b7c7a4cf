package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SocialMetrics counts user activity and times place lookups.
// A nil *SocialMetrics records nothing.
type SocialMetrics struct {
	followsTotal   *Counter
	reviewsTotal   *Counter
	likesTotal     *Counter
	savesTotal     *Counter
	lookupDuration *Histogram
	feedSize       *Histogram
}

// NewSocialMetrics registers the activity instruments on meter.
func NewSocialMetrics(meter metric.Meter) (*SocialMetrics, error) {
	var (
		m   SocialMetrics
		err error
	)
	if m.followsTotal, err = NewCounter(meter, "social_follow_changes_total", "Follow and unfollow actions", "{action}"); err != nil {
		return nil, err
	}
	if m.reviewsTotal, err = NewCounter(meter, "review_submissions_total", "Review submissions by outcome", "{review}"); err != nil {
		return nil, err
	}
	if m.likesTotal, err = NewCounter(meter, "review_like_changes_total", "Review like and unlike actions", "{action}"); err != nil {
		return nil, err
	}
	if m.savesTotal, err = NewCounter(meter, "saved_place_changes_total", "Saved place creations and removals", "{action}"); err != nil {
		return nil, err
	}
	if m.lookupDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "place_details_lookup_duration_seconds",
		Description: "Place details lookup latency including cache",
		Unit:        "s",
		Boundaries:  UpstreamDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.feedSize, err = NewHistogram(meter, HistogramOpts{
		Name:        "feed_reviews",
		Description: "Reviews returned per feed request",
		Unit:        "{review}",
		Boundaries:  []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	}); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordFollow records a follow (true) or unfollow (false).
func (m *SocialMetrics) RecordFollow(ctx context.Context, follow bool) {
	if m == nil {
		return
	}
	m.followsTotal.Inc(ctx, AttrAction.String(actionName(follow, "follow", "unfollow")))
}

// RecordReview records a review upsert; created is false for overwrites.
func (m *SocialMetrics) RecordReview(ctx context.Context, created bool) {
	if m == nil {
		return
	}
	m.reviewsTotal.Inc(ctx, AttrOutcome.String(actionName(created, "created", "updated")))
}

// RecordLike records a like (true) or unlike (false).
func (m *SocialMetrics) RecordLike(ctx context.Context, like bool) {
	if m == nil {
		return
	}
	m.likesTotal.Inc(ctx, AttrAction.String(actionName(like, "like", "unlike")))
}

// RecordSave records a saved place creation (true) or removal (false).
func (m *SocialMetrics) RecordSave(ctx context.Context, saved bool) {
	if m == nil {
		return
	}
	m.savesTotal.Inc(ctx, AttrAction.String(actionName(saved, "save", "remove")))
}

// RecordPlaceLookup records one details lookup.
func (m *SocialMetrics) RecordPlaceLookup(ctx context.Context, hit bool, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.lookupDuration.RecordDuration(ctx, elapsed,
		AttrCacheHit.Bool(hit),
		AttrOutcome.String(actionName(err == nil, "ok", "error")),
	)
}

// RecordFeed records the size of a composed feed.
func (m *SocialMetrics) RecordFeed(ctx context.Context, feed string, reviews int) {
	if m == nil {
		return
	}
	m.feedSize.Record(ctx, float64(reviews), attribute.String("feed", feed))
}

func actionName(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
