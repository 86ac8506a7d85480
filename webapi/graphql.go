package webapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// GraphQLClient sends GraphQL operations to a wa:GraphQLEndpoint.
type GraphQLClient struct {
	client *Client
}

// Client returns the underlying API client.
func (g *GraphQLClient) Client() *Client { return g.client }

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors GraphQLErrors   `json:"errors"`
}

// Query posts query with variables to the endpoint and decodes the "data"
// member into out. A response carrying errors returns GraphQLErrors after
// out has been filled with whatever data came back.
func (g *GraphQLClient) Query(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("webapi: encode graphql request: %w", err)
	}
	req, err := g.client.NewRequest(ctx, http.MethodPost, "", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var resp graphQLResponse
	if err := g.client.doJSON(req, &resp); err != nil {
		return err
	}
	if out != nil && len(resp.Data) > 0 && string(resp.Data) != "null" {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("webapi: decode graphql data: %w", err)
		}
	}
	if len(resp.Errors) > 0 {
		return resp.Errors
	}
	return nil
}
