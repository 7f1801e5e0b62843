package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	membershipstore "github.com/dalemusser/docuhub/internal/app/store/memberships"
	"github.com/dalemusser/docuhub/internal/domain/models"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (a *App) newMemberCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "member",
		Short: "Manage workspace members",
	}

	add := &cobra.Command{
		Use:   "add <workspace-id> <user-id>",
		Short: "Grant a user a role in a workspace (updates the role if already a member)",
		Args:  cobra.ExactArgs(2),
		RunE:  a.runMemberAdd,
	}
	add.Flags().String("role", models.MemberRoleEditor, "Role: owner, editor or viewer")

	c.AddCommand(add)
	c.AddCommand(&cobra.Command{
		Use:   "remove <workspace-id> <user-id>",
		Short: "Revoke a user's access to a workspace",
		Args:  cobra.ExactArgs(2),
		RunE:  a.runMemberRemove,
	})
	c.AddCommand(&cobra.Command{
		Use:   "list <workspace-id>",
		Short: "List a workspace's members",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runMemberList,
	})
	return c
}

func parseIDs(args []string, names ...string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, len(names))
	for i, name := range names {
		oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(args[i]))
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q", name, args[i])
		}
		out[i] = oid
	}
	return out, nil
}

func (a *App) runMemberAdd(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args, "workspace id", "user id")
	if err != nil {
		return err
	}
	role, _ := cmd.Flags().GetString("role")
	role = strings.ToLower(strings.TrimSpace(role))
	if !membershipstore.ValidRole(role) {
		return fmt.Errorf("%w: %q", membershipstore.ErrBadRole, role)
	}

	return a.withBackend(cmd, func(ctx context.Context, b *Backend) error {
		_, err := b.Members.Add(ctx, ids[0], ids[1], role)
		switch {
		case errors.Is(err, membershipstore.ErrDuplicateMembership):
			if err := b.Members.SetRole(ctx, ids[0], ids[1], role); err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "updated %s to %s\n", ids[1].Hex(), role)
			return err
		case err != nil:
			return err
		}
		_, err = fmt.Fprintf(a.out, "added %s as %s\n", ids[1].Hex(), role)
		return err
	})
}

func (a *App) runMemberRemove(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args, "workspace id", "user id")
	if err != nil {
		return err
	}
	return a.withBackend(cmd, func(ctx context.Context, b *Backend) error {
		removed, err := b.Members.Remove(ctx, ids[0], ids[1])
		if err != nil {
			return err
		}
		if !removed {
			_, err = fmt.Fprintf(a.out, "%s is not a member\n", ids[1].Hex())
			return err
		}
		_, err = fmt.Fprintf(a.out, "removed %s\n", ids[1].Hex())
		return err
	})
}

func (a *App) runMemberList(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args, "workspace id")
	if err != nil {
		return err
	}
	return a.withBackend(cmd, func(ctx context.Context, b *Backend) error {
		members, err := b.Members.ListForWorkspace(ctx, ids[0])
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "USER\tROLE\tSINCE")
		for _, m := range members {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", m.UserID.Hex(), m.Role, m.CreatedAt.Format("2006-01-02"))
		}
		return tw.Flush()
	})
}
