// Package vault holds the client-side model of encrypted vault entries and
// the in-memory cache the sharing engine works against. Item plaintext is
// only ever materialized after the owning symmetric key has been unwrapped.
package vault

import (
	"errors"

	"lockpass/internal/crypto"
)

type ItemType string

const (
	TypeLogin    ItemType = "login"
	TypeCard     ItemType = "card"
	TypeIdentity ItemType = "identity"
	TypeNote     ItemType = "note"
)

// CipherItem is one encrypted vault entry. An item is owned by exactly one
// key: the personal vault key when OrganizationID is empty, otherwise that
// organization's key.
type CipherItem struct {
	ID             string
	Type           ItemType
	FolderID       string
	OrganizationID string
	Name           crypto.EncString
	Fields         map[string]crypto.EncString
}

var ErrOrgOwned = errors.New("vault: item already belongs to an organization")

// EncryptItem seals a plaintext entry under key.
func EncryptItem(id string, typ ItemType, folderID, name string, fields map[string]string, key *crypto.SymmetricKey) (CipherItem, error) {
	encName, err := crypto.EncryptSymmetric([]byte(name), key)
	if err != nil {
		return CipherItem{}, err
	}
	item := CipherItem{
		ID:       id,
		Type:     typ,
		FolderID: folderID,
		Name:     encName,
		Fields:   make(map[string]crypto.EncString, len(fields)),
	}
	for k, v := range fields {
		e, err := crypto.EncryptSymmetric([]byte(v), key)
		if err != nil {
			return CipherItem{}, err
		}
		item.Fields[k] = e
	}
	return item, nil
}

// DecryptItem opens every field of an item with its owning key.
func DecryptItem(item CipherItem, key *crypto.SymmetricKey) (name string, fields map[string]string, err error) {
	n, err := crypto.DecryptSymmetric(item.Name, key)
	if err != nil {
		return "", nil, err
	}
	fields = make(map[string]string, len(item.Fields))
	for k, e := range item.Fields {
		pt, err := crypto.DecryptSymmetric(e, key)
		if err != nil {
			return "", nil, err
		}
		fields[k] = string(pt)
	}
	return string(n), fields, nil
}

// ReencryptItem moves an item from one owning key to another: every field
// ciphertext is opened under oldKey and sealed again under newKey. The
// plaintext exists only inside this function.
func ReencryptItem(item CipherItem, oldKey, newKey *crypto.SymmetricKey) (CipherItem, error) {
	name, fields, err := DecryptItem(item, oldKey)
	if err != nil {
		return CipherItem{}, err
	}
	out, err := EncryptItem(item.ID, item.Type, item.FolderID, name, fields, newKey)
	if err != nil {
		return CipherItem{}, err
	}
	out.OrganizationID = item.OrganizationID
	return out, nil
}
