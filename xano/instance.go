package xano

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// Instance describes a Xano instance and its Metadata API endpoints.
type Instance struct {
	Name        string `json:"name"`
	Display     string `json:"display"`
	Domain      string `json:"xano_domain"`
	RateLimit   bool   `json:"rate_limit"`
	MetaAPI     string `json:"meta_api"`
	MetaSwagger string `json:"meta_swagger"`
}

// InstanceDetails derives the endpoints of an instance from its name
// without calling the API.
func (c *Client) InstanceDetails(name string) (Instance, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	metaAPI, err := c.MetaAPI(name)
	if err != nil {
		return Instance{}, err
	}
	inst := Instance{
		Name:    name,
		Display: strings.ToUpper(strings.SplitN(name, "-", 2)[0]),
		MetaAPI: metaAPI,
	}
	if u, err := url.Parse(metaAPI); err == nil && u.Host != "" {
		inst.Domain = u.Host
		inst.MetaSwagger = u.Scheme + "://" + u.Host + "/apispec:meta?type=json"
	}
	return inst, nil
}

// ListInstances returns the instances visible to the token. It asks
// /auth/me first and falls back to the /instance listing when the account
// summary carries no instances.
func (c *Client) ListInstances(ctx context.Context) (any, error) {
	me, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/auth/me"})
	if err == nil {
		if m, ok := me.(map[string]any); ok {
			if instances, ok := m["instances"]; ok {
				return map[string]any{"instances": instances}, nil
			}
		}
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return nil, err
	}

	listed, listErr := c.Do(ctx, Request{Method: http.MethodGet, Path: "/instance"})
	if listErr != nil {
		if err != nil {
			return nil, err
		}
		return nil, listErr
	}
	if m, ok := listed.(map[string]any); ok {
		if instances, ok := m["instances"]; ok {
			return map[string]any{"instances": instances}, nil
		}
		if items, ok := m["items"]; ok {
			return map[string]any{"instances": items}, nil
		}
	}
	return map[string]any{"instances": listed}, nil
}

// ListWorkspaces lists the workspaces (databases) of an instance.
func (c *Client) ListWorkspaces(ctx context.Context, instance string) (any, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Instance: instance, Path: "/workspace"})
}

// GetWorkspace returns one workspace.
func (c *Client) GetWorkspace(ctx context.Context, instance string, workspace ID) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodGet,
		Instance: instance,
		Path:     Path("workspace", workspace.String()),
	})
}
