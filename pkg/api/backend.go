package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/matzehuels/reflections/pkg/interact"
	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/shard"
)

func (c *Client) GetPoints(ctx context.Context) (mosaic.WorkingSet, error) {
	var ws mosaic.WorkingSet
	err := c.call(ctx, http.MethodGet, "/points", nil, &ws)
	return ws, err
}

func (c *Client) CreatePoints(ctx context.Context, ws mosaic.WorkingSet) error {
	return c.call(ctx, http.MethodPost, "/points", ws, nil)
}

func (c *Client) UpdatePoints(ctx context.Context, ws mosaic.WorkingSet) error {
	return c.call(ctx, http.MethodPut, "/points", ws, nil)
}

// DeletePoints removes the stored working set.
func (c *Client) DeletePoints(ctx context.Context) error {
	return c.call(ctx, http.MethodDelete, "/points", nil, nil)
}

func (c *Client) ListShards(ctx context.Context) ([]shard.Shard, error) {
	var list []shard.Shard
	err := c.call(ctx, http.MethodGet, "/shards", nil, &list)
	return list, err
}

// GetShard fetches one shard.
func (c *Client) GetShard(ctx context.Context, id string) (shard.Shard, error) {
	var sh shard.Shard
	err := c.call(ctx, http.MethodGet, "/shards/"+url.PathEscape(id), nil, &sh)
	return sh, err
}

func (c *Client) CreateShard(ctx context.Context, d shard.Draft) ([]shard.Shard, error) {
	var list []shard.Shard
	err := c.call(ctx, http.MethodPost, "/shards", d, &list)
	return list, err
}

func (c *Client) UpdateShard(ctx context.Context, id string, d shard.Draft) ([]shard.Shard, error) {
	var list []shard.Shard
	err := c.call(ctx, http.MethodPut, "/shards/"+url.PathEscape(id), d, &list)
	return list, err
}

func (c *Client) DeleteShard(ctx context.Context, id string) ([]shard.Shard, error) {
	var list []shard.Shard
	err := c.call(ctx, http.MethodDelete, "/shards/"+url.PathEscape(id), nil, &list)
	return list, err
}

// TarnishShard flags a shard.
func (c *Client) TarnishShard(ctx context.Context, id string) (shard.Shard, error) {
	var sh shard.Shard
	err := c.call(ctx, http.MethodPost, "/shards/"+url.PathEscape(id)+"/tarnish", nil, &sh)
	return sh, err
}

// MosaicSVG fetches the server-rendered mosaic.
func (c *Client) MosaicSVG(ctx context.Context, width, height int) ([]byte, error) {
	var out []byte
	q := url.Values{}
	q.Set("width", strconv.Itoa(width))
	q.Set("height", strconv.Itoa(height))
	err := c.call(ctx, http.MethodGet, "/mosaic.svg?"+q.Encode(), nil, &out)
	return out, err
}

var _ interact.Backend = (*Client)(nil)
