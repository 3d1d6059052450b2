package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spacecol/pkg/cache"
	"github.com/matzehuels/spacecol/pkg/errors"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or empty the result cache",
		Long: `Grown trees and rendered artifacts are cached by option hash under
$XDG_CACHE_HOME/spacecol, or in Redis when ` + envRedisURL + ` is set.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every cached tree and artifact",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return clearCache(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print where the cache lives",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if url := os.Getenv(envRedisURL); url != "" {
					fmt.Fprintln(cmd.OutOrStdout(), url)
					return nil
				}
				dir, err := cacheDir()
				if err != nil {
					return errors.Wrap(errors.ErrCodeInvalidPath, err, "locate cache directory")
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
				return nil
			},
		},
	)
	return cmd
}

func clearCache(ctx context.Context) error {
	if os.Getenv(envRedisURL) == "" {
		dir, err := cacheDir()
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "locate cache directory")
		}
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			printInfo("Cache is empty")
			return nil
		}
	}

	store, err := newCache(ctx, false)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResourceUnavailable, err, "open cache")
	}
	defer store.Close()

	cl, ok := store.(cache.Clearer)
	if !ok {
		return errors.New(errors.ErrCodeUnsupported, "%T cannot be cleared", store)
	}
	if err := cl.Clear(ctx); err != nil {
		return err
	}
	printSuccess("Cache cleared")
	if fc, ok := store.(*cache.FileCache); ok {
		printDetail("%s", fc.Dir())
	}
	return nil
}
