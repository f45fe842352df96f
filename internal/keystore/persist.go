package keystore

import (
	"encoding/json"
	"strconv"

	"lockpass/internal/crypto"
)

// The wrapped vault key and private key are stored in their EncString wire
// form; they are only ever unwrapped in memory.

func (ks *KeyStore) SaveWrappedVaultKey(e crypto.EncString) error {
	return ks.setString(keyWrappedVaultKey, e.String())
}

func (ks *KeyStore) WrappedVaultKey() (crypto.EncString, error) {
	s, err := ks.getString(keyWrappedVaultKey)
	if err != nil {
		return crypto.EncString{}, err
	}
	return crypto.ParseEncString(s)
}

func (ks *KeyStore) SaveWrappedPrivateKey(e crypto.EncString) error {
	return ks.setString(keyWrappedPrivateKey, e.String())
}

func (ks *KeyStore) WrappedPrivateKey() (crypto.EncString, error) {
	s, err := ks.getString(keyWrappedPrivateKey)
	if err != nil {
		return crypto.EncString{}, err
	}
	return crypto.ParseEncString(s)
}

// SaveWrappedOrgKey persists one wrapped organization key and records its
// id in an index so Logout can sweep every orgKey entry.
func (ks *KeyStore) SaveWrappedOrgKey(orgID string, e crypto.EncString) error {
	if err := ks.setString(orgKeyPrefix+orgID, e.String()); err != nil {
		return err
	}
	ids := ks.orgKeyIDs()
	for _, id := range ids {
		if id == orgID {
			return nil
		}
	}
	return ks.saveOrgKeyIDs(append(ids, orgID))
}

func (ks *KeyStore) orgKeyIDs() []string {
	b, err := ks.secure.Get(keyOrgKeyIDs)
	if err != nil {
		return nil
	}
	var ids []string
	if json.Unmarshal(b, &ids) != nil {
		return nil
	}
	return ids
}

func (ks *KeyStore) saveOrgKeyIDs(ids []string) error {
	if len(ids) == 0 {
		return ks.secure.Remove(keyOrgKeyIDs)
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return ks.secure.Set(keyOrgKeyIDs, b)
}

func (ks *KeyStore) WrappedOrgKey(orgID string) (crypto.EncString, error) {
	s, err := ks.getString(orgKeyPrefix + orgID)
	if err != nil {
		return crypto.EncString{}, err
	}
	return crypto.ParseEncString(s)
}

func (ks *KeyStore) SaveKDF(kdfType crypto.KDFType, iterations int) error {
	if err := ks.setString(keyKDFType, strconv.Itoa(int(kdfType))); err != nil {
		return err
	}
	return ks.setString(keyKDFIterations, strconv.Itoa(iterations))
}

func (ks *KeyStore) KDF() (crypto.KDFType, int, error) {
	t, err := ks.getString(keyKDFType)
	if err != nil {
		return 0, 0, err
	}
	it, err := ks.getString(keyKDFIterations)
	if err != nil {
		return 0, 0, err
	}
	kt, err := strconv.Atoi(t)
	if err != nil {
		return 0, 0, err
	}
	iters, err := strconv.Atoi(it)
	if err != nil {
		return 0, 0, err
	}
	return crypto.KDFType(kt), iters, nil
}

func (ks *KeyStore) SaveTokens(access, refresh string) error {
	if err := ks.setString(keyAccessToken, access); err != nil {
		return err
	}
	return ks.setString(keyRefreshToken, refresh)
}

func (ks *KeyStore) Tokens() (access, refresh string, err error) {
	access, err = ks.getString(keyAccessToken)
	if err != nil {
		return "", "", err
	}
	refresh, err = ks.getString(keyRefreshToken)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (ks *KeyStore) SaveDeviceID(id string) error { return ks.setString(keyDeviceID, id) }

func (ks *KeyStore) DeviceID() (string, error) { return ks.getString(keyDeviceID) }

func (ks *KeyStore) SaveEmail(email string) error { return ks.setString(keyEmail, email) }

func (ks *KeyStore) Email() (string, error) { return ks.getString(keyEmail) }
