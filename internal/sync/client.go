// Package sync fills the local cipher cache from the server's sync
// endpoint. Items arrive and stay encrypted; no key is needed to sync.
package sync

import (
	"context"
	"log/slog"

	"lockpass/internal/api"
	"lockpass/internal/crypto"
	"lockpass/internal/logging"
	"lockpass/internal/vault"
)

type Client struct {
	api   api.Client
	cache *vault.Cache
	log   *slog.Logger
}

func New(apiClient api.Client, cache *vault.Cache, logger *slog.Logger) *Client {
	return &Client{api: apiClient, cache: cache, log: logging.For(logger, "sync")}
}

// Pull replaces the cache contents with the server's view.
func (c *Client) Pull(ctx context.Context) (api.Kind, error) {
	resp := c.api.Sync(ctx)
	if resp.Kind != api.KindOK {
		return resp.Kind, resp.Err
	}

	items := make([]vault.CipherItem, 0, len(resp.Data.Ciphers))
	for _, sc := range resp.Data.Ciphers {
		item, err := toItem(sc)
		if err != nil {
			return api.KindBadData, err
		}
		items = append(items, item)
	}

	c.cache.Clear()
	for _, item := range items {
		c.cache.Put(item)
	}
	c.log.Info("cache synced", "items", len(items))
	return api.KindOK, nil
}

// PullIfStale refreshes only when a share operation marked the cache stale.
func (c *Client) PullIfStale(ctx context.Context) (api.Kind, error) {
	if !c.cache.Stale() {
		return api.KindOK, nil
	}
	return c.Pull(ctx)
}

func toItem(sc api.SyncCipher) (vault.CipherItem, error) {
	name, err := crypto.ParseEncString(sc.Name)
	if err != nil {
		return vault.CipherItem{}, err
	}
	item := vault.CipherItem{
		ID:             sc.ID,
		Type:           vault.ItemType(sc.Type),
		FolderID:       sc.FolderID,
		OrganizationID: sc.OrganizationID,
		Name:           name,
		Fields:         make(map[string]crypto.EncString, len(sc.Fields)),
	}
	for k, v := range sc.Fields {
		e, err := crypto.ParseEncString(v)
		if err != nil {
			return vault.CipherItem{}, err
		}
		item.Fields[k] = e
	}
	return item, nil
}
