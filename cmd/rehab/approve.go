// ABOUTME: Interactive write approval for the CLI.
// ABOUTME: Asks before each signed write; anything but yes is a decline.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/harperreed/rehab/internal/ledger"
)

func promptApprover(in io.Reader, out io.Writer) ledger.Approver {
	reader := bufio.NewReader(in)
	return ledger.ApproverFunc(func(ctx context.Context, req ledger.WriteRequest) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(out, "Sign write of %d bytes to %s as %s? [y/N] ", req.Size, req.Key, req.Identity)

		response, err := reader.ReadString('\n')
		if err != nil && response == "" {
			return fmt.Errorf("%w: no answer", ledger.ErrDeclined)
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			return ledger.ErrDeclined
		}
		return nil
	})
}
