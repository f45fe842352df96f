// lockerctl is the terminal client: login variants, folder sharing and
// emergency access against a Locker-compatible server.
package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lockpass/internal/api"
	"lockpass/internal/audit"
	"lockpass/internal/auth"
	"lockpass/internal/config"
	"lockpass/internal/crypto"
	"lockpass/internal/emergency"
	"lockpass/internal/keystore"
	"lockpass/internal/logging"
	"lockpass/internal/platform"
	"lockpass/internal/policy"
	"lockpass/internal/search"
	"lockpass/internal/sharing"
	"lockpass/internal/storage"
	syncpkg "lockpass/internal/sync"
	"lockpass/internal/totp"
	"lockpass/internal/vault"
)

type app struct {
	cfg       config.Config
	auth      *auth.Authenticator
	sharing   *sharing.Engine
	emergency *emergency.Module
	sync      *syncpkg.Client
	keys      *keystore.KeyStore
	cache     *vault.Cache
	clipboard platform.Clipboard
	stdin     *bufio.Reader
}

func newApp() (*app, error) {
	if err := platform.DisableCoreDumps(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: core dumps not disabled:", err)
	}

	cfg := config.Load()
	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		return nil, err
	}
	secure := storage.NewFileKV(cfg.StorePath())
	keychain, err := platform.NewFileKeychain(cfg.KeychainDir())
	if err != nil {
		return nil, err
	}

	logger := logging.New(os.Stderr, cfg.Debug)
	auditLog := audit.New()
	keys := keystore.New(secure)
	client := api.NewHTTPClient(cfg.BaseURL, &http.Client{Timeout: cfg.HTTPTimeout})
	cache := vault.NewCache()

	return &app{
		cfg: cfg,
		auth: auth.New(client, keys, auth.Config{
			Device:           auth.NewStaticDevice(cfg.DeviceName, cfg.DeviceType),
			Keychain:         keychain,
			Audit:            auditLog,
			Logger:           logger,
			AttemptThreshold: cfg.AttemptThreshold,
		}),
		sharing: sharing.New(client, keys, cache, sharing.Config{
			Policy: &policy.PasswordPolicy{MinLength: 8},
			Audit:  auditLog,
			Logger: logger,
		}),
		emergency: emergency.New(client, keys, emergency.Config{Audit: auditLog, Logger: logger}),
		sync:      syncpkg.New(client, cache, logger),
		keys:      keys,
		cache:     cache,
		clipboard: platform.NewClipboard(),
		stdin:     bufio.NewReader(os.Stdin),
	}, nil
}

func (a *app) readLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := a.stdin.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func reportAuth(r auth.Result) error {
	switch r.Kind {
	case api.KindOK:
		fmt.Println("ok")
		return nil
	case api.KindRateLimited:
		if r.WaitSeconds > 0 {
			return fmt.Errorf("rate limited, retry in %ds", r.WaitSeconds)
		}
		return fmt.Errorf("rate limited")
	case api.KindOnPremise2FA:
		fmt.Println("second factor required:", strings.Join(r.Methods, ", "))
		return nil
	default:
		if r.Err != nil {
			return fmt.Errorf("%s: %w", r.Kind, r.Err)
		}
		return fmt.Errorf("%s", r.Kind)
	}
}

func main() {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:           "lockerctl",
		Short:         "Locker password manager client",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	var rememberDevice bool
	login := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in with the master password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := a.readLine("master password: ")
			if err != nil {
				return err
			}
			r := a.auth.SessionLogin(cmd.Context(), args[0], password)
			if r.Kind == api.KindOnPremise2FA {
				method, err := a.readLine("method (" + strings.Join(r.Methods, "/") + "): ")
				if err != nil {
					return err
				}
				if err := reportAuth(a.auth.SelectMethod(method)); err != nil {
					return err
				}
				code, err := a.readLine("code: ")
				if err != nil {
					return err
				}
				r = a.auth.SessionOTPLogin(cmd.Context(), code, rememberDevice)
			}
			return reportAuth(r)
		},
	}
	login.Flags().BoolVar(&rememberDevice, "remember-device", false, "skip the second factor on this device next time")

	qrLogin := &cobra.Command{
		Use:   "qr-login <email> <payload>",
		Short: "Log in from a scanned QR payload and its on-screen OTP",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			otp, err := a.readLine("otp: ")
			if err != nil {
				return err
			}
			return reportAuth(a.auth.SessionQRLogin(cmd.Context(), args[0], args[1], otp))
		},
	}

	register := &cobra.Command{
		Use:   "register <email>",
		Short: "Create a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := a.readLine("master password: ")
			if err != nil {
				return err
			}
			return reportAuth(a.auth.RegisterLocker(cmd.Context(), args[0], password, crypto.KDFPBKDF2SHA256, 600000))
		},
	}

	unlock := &cobra.Command{
		Use:   "unlock",
		Short: "Unlock a locked session with the master password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := a.readLine("master password: ")
			if err != nil {
				return err
			}
			return reportAuth(a.auth.Unlock(cmd.Context(), password))
		},
	}

	biometric := &cobra.Command{
		Use:   "biometric-unlock",
		Short: "Unlock with the OS biometric sensor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return reportAuth(a.auth.BiometricLogin(cmd.Context()))
		},
	}

	lock := &cobra.Command{
		Use:   "lock",
		Short: "Clear unwrapped keys from memory",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.auth.Lock()
			fmt.Println("locked")
		},
	}

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and wipe local state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return reportAuth(a.auth.Logout(cmd.Context()))
		},
	}

	changePassword := &cobra.Command{
		Use:   "change-password",
		Short: "Change the master password, keeping the vault key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.readLine("current master password: ")
			if err != nil {
				return err
			}
			next, err := a.readLine("new master password: ")
			if err != nil {
				return err
			}
			return reportAuth(a.auth.ChangeMasterPassword(cmd.Context(), current, next))
		},
	}

	var shareEmails []string
	var shareGroups []string
	share := &cobra.Command{
		Use:   "share <folder-id> <folder-name>",
		Short: "Share a folder with members and groups",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var members []sharing.Member
			for _, e := range shareEmails {
				members = append(members, sharing.Member{Email: e, Role: "member"})
			}
			var groups []sharing.Group
			for _, g := range shareGroups {
				groups = append(groups, sharing.Group{ID: g, Role: "member"})
			}
			r := a.sharing.ShareFolder(cmd.Context(), args[0], args[1], members, groups)
			for _, v := range r.Violations {
				fmt.Fprintln(os.Stderr, "policy:", v.Message)
			}
			if r.Kind != api.KindOK {
				return fmt.Errorf("%s: %v", r.Kind, r.Err)
			}
			fmt.Println("organization", r.OrganizationID)
			return nil
		},
	}
	share.Flags().StringSliceVar(&shareEmails, "member", nil, "recipient email (repeatable)")
	share.Flags().StringSliceVar(&shareGroups, "group", nil, "group id (repeatable)")

	stopShare := &cobra.Command{
		Use:   "stop-share <org-id> <folder-name>",
		Short: "Dissolve a shared folder back into the personal vault",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := a.sharing.StopShareFolder(cmd.Context(), args[0], args[1])
			if r.Kind != api.KindOK {
				return fmt.Errorf("%s: %v", r.Kind, r.Err)
			}
			fmt.Println("ok")
			return nil
		},
	}

	takeover := &cobra.Command{
		Use:   "takeover <contact-id> <owner-email>",
		Short: "Emergency-access takeover of a trusted contact's account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := a.readLine("new master password for the account: ")
			if err != nil {
				return err
			}
			r := a.emergency.UpdateNewMasterPasswordEA(cmd.Context(), args[0], args[1], password)
			if r.Kind != api.KindOK {
				return fmt.Errorf("%s: %v", r.Kind, r.Err)
			}
			fmt.Println("ok")
			return nil
		},
	}

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Refresh the local cipher cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := a.sync.Pull(cmd.Context())
			if kind != api.KindOK {
				return fmt.Errorf("%s: %v", kind, err)
			}
			fmt.Println("ok")
			return nil
		},
	}

	otp := &cobra.Command{
		Use:   "otp <item-id>",
		Short: "Generate the current TOTP code for a login item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vaultKey, err := a.keys.VaultKey()
			if err != nil {
				return fmt.Errorf("unlock first: %w", err)
			}
			item, ok := a.cache.Get(args[0])
			if !ok {
				return fmt.Errorf("item %s not in cache, run sync", args[0])
			}
			key := vaultKey
			if item.OrganizationID != "" {
				key, err = a.keys.OrgKey(item.OrganizationID)
				if err != nil {
					return err
				}
			}
			enc, ok := item.Fields["totp"]
			if !ok {
				return fmt.Errorf("item has no totp secret")
			}
			secret, err := crypto.DecryptSymmetric(enc, key)
			if err != nil {
				return err
			}
			code, err := totp.Generate(string(secret), time.Now())
			crypto.Zero(secret)
			if err != nil {
				return err
			}
			if err := a.clipboard.Set(code, 30*time.Second); err == nil {
				fmt.Fprintln(os.Stderr, "copied to clipboard")
			}
			fmt.Println(code)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list [query]",
		Short: "List cached items, optionally filtered by name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vaultKey, err := a.keys.VaultKey()
			if err != nil {
				return fmt.Errorf("unlock first: %w", err)
			}
			idx := search.New()
			names := map[string]string{}
			for _, item := range a.cache.Items() {
				key := vaultKey
				if item.OrganizationID != "" {
					if key, err = a.keys.OrgKey(item.OrganizationID); err != nil {
						continue
					}
				}
				name, _, err := vault.DecryptItem(item, key)
				if err != nil {
					continue
				}
				idx.Add(item.ID, name)
				names[item.ID] = name
			}
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			for _, id := range idx.Query(query) {
				fmt.Printf("%s\t%s\n", id, names[id])
			}
			return nil
		},
	}

	root.AddCommand(login, qrLogin, register, unlock, biometric, lock, logout,
		changePassword, share, stopShare, takeover, syncCmd, otp, list)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
