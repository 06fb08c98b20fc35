package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/vietddude/ethscan"
)

var etherCmd = &cobra.Command{
	Use:   "ether <address>...",
	Short: "Show native balances of one or more addresses",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, s *session) (any, error) {
			return ethscan.GetEtherBalances(ctx, s.caller, args, s.options())
		})
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <token> <holder>...",
	Short: "Show the balance of one token for one or more holders",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, s *session) (any, error) {
			return ethscan.GetTokenBalances(ctx, s.caller, args[1:], args[0], s.options())
		})
	},
}

var tokensCmd = &cobra.Command{
	Use:   "tokens <holder> <token>...",
	Short: "Show the balances of one or more tokens for one holder",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, s *session) (any, error) {
			return ethscan.GetTokensBalance(ctx, s.caller, args[0], args[1:], s.options())
		})
	},
}

var (
	matrixHolders []string
	matrixTokens  []string
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Show the balance of every token for every holder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, s *session) (any, error) {
			return ethscan.GetTokensBalances(ctx, s.caller, matrixHolders, matrixTokens, s.options())
		})
	},
}

func init() {
	matrixCmd.Flags().StringSliceVar(&matrixHolders, "holders", nil, "holder addresses")
	matrixCmd.Flags().StringSliceVar(&matrixTokens, "tokens", nil, "token addresses")
	_ = matrixCmd.MarkFlagRequired("holders")
	_ = matrixCmd.MarkFlagRequired("tokens")

	rootCmd.AddCommand(etherCmd, tokenCmd, tokensCmd, matrixCmd)
}
