package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dalemusser/docuhub/internal/app/hierarchy"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gopkg.in/yaml.v3"
)

// exportNode is the portable shape of a tree node.
type exportNode struct {
	ID       string        `json:"id" yaml:"id"`
	Title    string        `json:"title" yaml:"title"`
	Slug     string        `json:"slug" yaml:"slug"`
	Emoji    string        `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	Position int           `json:"position" yaml:"position"`
	Tags     []string      `json:"tags,omitempty" yaml:"tags,omitempty"`
	Orphan   bool          `json:"orphan,omitempty" yaml:"orphan,omitempty"`
	Children []*exportNode `json:"children,omitempty" yaml:"children,omitempty"`
}

func toExport(nodes []*hierarchy.TreeNode) []*exportNode {
	out := make([]*exportNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &exportNode{
			ID:       n.ID.Hex(),
			Title:    n.Title,
			Slug:     n.Slug,
			Emoji:    n.Emoji,
			Position: n.Position,
			Tags:     n.Metadata.Tags,
			Orphan:   n.Orphan,
			Children: toExport(n.Children),
		})
	}
	return out
}

func (a *App) newTreeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "tree <workspace-id>",
		Short: "Export a workspace's document tree",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runTree,
	}
	c.Flags().StringP("format", "f", "yaml", "Output format: yaml or json")
	return c
}

func (a *App) runTree(cmd *cobra.Command, args []string) error {
	wsID, err := primitive.ObjectIDFromHex(strings.TrimSpace(args[0]))
	if err != nil {
		return fmt.Errorf("invalid workspace id %q", args[0])
	}
	format, _ := cmd.Flags().GetString("format")
	format = strings.ToLower(format)
	if format != "yaml" && format != "json" {
		return fmt.Errorf("invalid format %q: must be 'yaml' or 'json'", format)
	}

	return a.withBackend(cmd, func(ctx context.Context, b *Backend) error {
		tree, err := b.Docs.Tree(ctx, wsID)
		if err != nil {
			return err
		}
		nodes := toExport(tree)

		if format == "json" {
			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			return enc.Encode(nodes)
		}
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(nodes); err != nil {
			return err
		}
		return enc.Close()
	})
}
