package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"photoroom/prapi"
)

func (a *app) showAccount(ctx context.Context) error {
	client, err := a.client()
	if err != nil {
		return err
	}

	stop := a.spinner("Fetching account details...")
	acct, err := client.Account(ctx)
	stop()
	if err != nil {
		return err
	}
	printAccount(a.out, acct)
	return nil
}

func printAccount(w io.Writer, acct *prapi.Account) {
	printHeader(w, "💳 Account Details")
	fmt.Fprintln(w, colorDim.Sprint(rule()))
	if acct.DryRun {
		colorYellow.Fprintln(w, "  [DRY RUN] Credits were not fetched")
		return
	}
	fmt.Fprint(w, formatTable([][]string{
		{"Available credits", colorGreen.Sprint(strconv.FormatInt(acct.Available, 10))},
		{"Subscription credits", colorCyan.Sprint(strconv.FormatInt(acct.Subscription, 10))},
	}))
	fmt.Fprintln(w, colorDim.Sprint(rule()))
}
