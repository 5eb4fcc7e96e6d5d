package service

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/policy"
	"github.com/recordhub/records-system/internal/core/ports"
	"github.com/recordhub/records-system/internal/core/validation"
)

var validate = validation.New()

// authorize evaluates the listing-level decision and returns the scope to
// merge into the query.
func authorize(actor domain.Actor, res policy.Resource, act policy.Action) (policy.Scope, error) {
	d := policy.Evaluate(policy.Request{Actor: actor, Resource: res, Action: act})
	if !d.Allowed() {
		return policy.Scope{}, domain.ErrForbidden
	}
	return d.Scope, nil
}

// listQuery keeps the whitelisted filters of p, keyed by stored field path.
func listQuery(p ports.ListParams, fields map[string]string, scope policy.Scope) ports.ListQuery {
	q := ports.ListQuery{
		Search: strings.TrimSpace(p.Search),
		Scope:  scope,
		Page:   domain.NewPage(p.Page.Number, p.Page.Limit),
	}
	for param, field := range fields {
		q.Filter(field, strings.TrimSpace(p.Filters[param]))
	}
	return q
}

func nextSequenceID(ctx context.Context, seq ports.Sequencer, prefix string) (string, error) {
	last, err := seq.LastSequenceID(ctx)
	if err != nil {
		return "", fmt.Errorf("read last %s id: %w", prefix, err)
	}
	return domain.NextSequentialID(prefix, last), nil
}

// userSummaries resolves ids to summaries. Ids that no longer resolve are
// absent from the map.
func userSummaries(ctx context.Context, users ports.UserRepository, ids []string) (map[string]*domain.UserSummary, error) {
	out := make(map[string]*domain.UserSummary, len(ids))
	ids = compactIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	found, err := users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("populate users: %w", err)
	}
	for _, u := range found {
		out[u.ID] = u.Summary()
	}
	return out, nil
}

func compactIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// mergePatch applies an RFC 7386 JSON merge patch to dst: objects merge
// recursively, null removes a key and every other value replaces.
func mergePatch(dst any, patch []byte) error {
	var p any
	if err := json.Unmarshal(patch, &p); err != nil {
		return domain.NewValidationError("body", "request body must be a JSON object")
	}
	if _, ok := p.(map[string]any); !ok {
		return domain.NewValidationError("body", "request body must be a JSON object")
	}

	current, err := json.Marshal(dst)
	if err != nil {
		return fmt.Errorf("encode current: %w", err)
	}
	var doc any
	if err := json.Unmarshal(current, &doc); err != nil {
		return fmt.Errorf("decode current: %w", err)
	}

	merged, err := json.Marshal(mergeValue(doc, p))
	if err != nil {
		return fmt.Errorf("encode merged: %w", err)
	}
	reflect.ValueOf(dst).Elem().SetZero()
	if err := json.Unmarshal(merged, dst); err != nil {
		return domain.NewValidationError("body", err.Error())
	}
	return nil
}

func mergeValue(target, patch any) any {
	pm, ok := patch.(map[string]any)
	if !ok {
		return patch
	}
	tm, ok := target.(map[string]any)
	if !ok {
		tm = map[string]any{}
	}
	for k, v := range pm {
		if v == nil {
			delete(tm, k)
			continue
		}
		tm[k] = mergeValue(tm[k], v)
	}
	return tm
}

// patchHas reports whether patch sets the nested key path.
func patchHas(patch []byte, path ...string) bool {
	var cur any
	if err := json.Unmarshal(patch, &cur); err != nil {
		return false
	}
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return false
		}
		if cur, ok = obj[key]; !ok {
			return false
		}
	}
	return true
}
