package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Protocol-Lattice/sdlprint/credentials"
)

func (a *app) loginCmd() *cobra.Command {
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Store, list or remove API keys",
		Long: "Store an API key for later use. The key is taken from --api-key, the SDLPRINT_API_KEY environment variable, " +
			"or the first line of standard input.",
		Args: cobra.NoArgs,
		RunE: a.runLogin,
	}

	loginCmd.Flags().String("api-key", "", "API key to store")
	loginCmd.Flags().String("profile", credentials.DefaultProfile, "Profile to store the key under")
	loginCmd.Flags().String("credentials", "", "Credentials file (default: sdlprint/credentials.yaml in the user config directory)")
	loginCmd.Flags().Bool("remove", false, "Remove the stored key instead")
	loginCmd.Flags().Bool("list", false, "List stored profiles with masked keys instead")
	loginCmd.MarkFlagsMutuallyExclusive("remove", "list")

	_ = a.v.BindPFlag("api_key", loginCmd.Flags().Lookup("api-key"))
	_ = a.v.BindPFlag("credentials.path", loginCmd.Flags().Lookup("credentials"))
	return loginCmd
}

func (a *app) runLogin(cmd *cobra.Command, args []string) error {
	profile, _ := cmd.Flags().GetString("profile")
	remove, _ := cmd.Flags().GetBool("remove")
	list, _ := cmd.Flags().GetBool("list")

	path := a.v.GetString("credentials.path")
	if path == "" {
		var err error
		if path, err = credentials.DefaultPath(); err != nil {
			return err
		}
	}
	store, err := credentials.Load(path)
	if err != nil {
		return err
	}
	if list {
		return a.listProfiles(store)
	}
	log := a.log.WithField("profile", profile)

	if remove {
		if !store.Remove(profile) {
			log.Info("no stored key")
			return nil
		}
		if err := store.Save(); err != nil {
			return err
		}
		log.Info("removed stored key")
		return nil
	}

	key := a.v.GetString("api_key")
	if key == "" {
		if key, err = readLine(a.in); err != nil {
			return err
		}
	}
	if _, err := store.Get(profile); err == nil {
		log.Info("replacing stored key")
	}
	if err := store.Set(profile, key); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}
	log.WithField("file", store.Path()).Info("stored API key")
	return nil
}

// listProfiles writes one "profile<TAB>masked key" line per stored profile.
func (a *app) listProfiles(store *credentials.Store) error {
	for _, name := range store.Names() {
		key, err := store.Get(name)
		if err != nil {
			continue
		}
		if _, err := fmt.Fprintf(a.out, "%s\t%s\n", name, maskKey(key)); err != nil {
			return err
		}
	}
	return nil
}

// maskKey hides all but the last four characters of key.
func maskKey(key string) string {
	const shown = 4
	r := []rune(key)
	if len(r) <= shown {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-shown) + string(r[len(r)-shown:])
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading API key: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("no API key given")
	}
	return line, nil
}
