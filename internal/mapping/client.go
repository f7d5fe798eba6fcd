package mapping

import (
	"context"
	"encoding/json"

	"authlinks/internal/platform/okapi"
)

// Client reads the authority mapping rules from the gateway.
type Client struct {
	okapi *okapi.Client
}

func NewClient(c *okapi.Client) *Client {
	return &Client{okapi: c}
}

type rule struct {
	Target string `json:"target"`
}

// FetchRules reads the rules of the context tenant. Rule entries without a
// target are skipped.
func (c *Client) FetchRules(ctx context.Context) (Rules, error) {
	var raw map[string][]json.RawMessage
	if err := c.okapi.GetJSON(ctx, rulesPath, nil, &raw); err != nil {
		return nil, err
	}
	rules := make(Rules, len(raw))
	for tag, entries := range raw {
		for _, e := range entries {
			var r rule
			if err := json.Unmarshal(e, &r); err != nil || r.Target == "" {
				continue
			}
			rules[tag] = append(rules[tag], r.Target)
		}
	}
	return rules, nil
}
