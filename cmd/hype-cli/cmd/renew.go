// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dothype/hypevm/client"
	"github.com/dothype/hypevm/vm"
)

var (
	renewYears uint64
	renewValue string
)

func init() {
	renewCmd.PersistentFlags().Uint64Var(&renewYears, "years", 1, "years to extend by")
	renewCmd.PersistentFlags().StringVar(&renewValue, "value", "", "tokens to attach, the current quote when empty")
}

var renewCmd = &cobra.Command{
	Use:   "renew [options] <name>",
	Short: "Extends the expiry of a name",
	RunE:  renewFunc,
}

func renewFunc(cmd *cobra.Command, args []string) error {
	name, err := getName(args, 1)
	if err != nil {
		return err
	}
	duration := yearsToDuration(renewYears)
	cli := client.New(uri, requestTimeout)
	q, err := cli.QuoteRenewal(name, duration)
	if err != nil {
		return err
	}
	value := q.Native
	if renewValue != "" {
		if value, err = parseAmount(renewValue); err != nil {
			return err
		}
	}
	_, err = issue(vm.Renew, &vm.NameDurationArgs{Name: name, Duration: duration},
		client.WithValue(value), client.WithInfo(name))
	return err
}
