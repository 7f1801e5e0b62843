package cli

import (
	"fmt"
	"strings"

	"github.com/dalemusser/docuhub/internal/app/system/auth"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (a *App) newTokenCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint a bearer token for a user",
		Long: `Mint a bearer token the API accepts for the given user id. The token
keys must match the server's token_hash_key and token_block_key.`,
		Args: cobra.ExactArgs(1),
		RunE: a.runToken,
	}
	c.Flags().String("name", "", "Display name carried in the token")
	return c
}

func (a *App) runToken(cmd *cobra.Command, args []string) error {
	uid, err := primitive.ObjectIDFromHex(strings.TrimSpace(args[0]))
	if err != nil {
		return fmt.Errorf("invalid user id %q", args[0])
	}
	name, _ := cmd.Flags().GetString("name")

	s := a.Settings()
	tokens, err := auth.NewTokenManager(s.TokenHashKey, s.TokenBlockKey, s.TokenTTL, a.logger)
	if err != nil {
		return err
	}
	token, err := tokens.Mint(auth.TokenUser{ID: uid.Hex(), Name: name})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, token)
	return err
}
