// Command bookctl is an operator tool for the reservation API.
//
//	bookctl hash-password -password secret
//	bookctl wait-payment -api http://localhost:8001 -session cs_test_...
//	bookctl availability -api http://localhost:8001 -villa villa-1 -in 2026-07-01 -out 2026-07-05
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/apollos-hideaway/hideaway-api/internal/pkg/hideaway"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/password"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	var err error
	switch args[0] {
	case "hash-password":
		err = hashPassword(args[1:], stdout)
	case "wait-payment":
		err = waitPayment(args[1:], stdout)
	case "availability":
		err = availability(args[1:], stdout)
	default:
		usage(stderr)
		return 2
	}

	if err != nil {
		fmt.Fprintf(stderr, "bookctl %s: %v\n", args[0], err)
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: bookctl <hash-password|wait-payment|availability> [flags]")
}

func hashPassword(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	pwd := fs.String("password", "", "admin password to hash")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pwd == "" {
		return errors.New("-password is required")
	}

	hash, err := password.Hash(*pwd)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, hash)
	return nil
}

func waitPayment(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("wait-payment", flag.ContinueOnError)
	api := fs.String("api", "http://localhost:8001", "API base URL")
	session := fs.String("session", "", "checkout session id")
	attempts := fs.Int("attempts", hideaway.DefaultPollConfig.MaxAttempts, "maximum status checks")
	interval := fs.Duration("interval", hideaway.DefaultPollConfig.Interval, "delay between checks")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *session == "" {
		return errors.New("-session is required")
	}

	client := hideaway.NewClient(*api, 10*time.Second)
	status, err := client.WaitForPayment(context.Background(), *session, hideaway.PollConfig{
		MaxAttempts: *attempts,
		Interval:    *interval,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "paid: booking %s\n", status.BookingID)
	return nil
}

func availability(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("availability", flag.ContinueOnError)
	api := fs.String("api", "http://localhost:8001", "API base URL")
	villaID := fs.String("villa", "", "villa id")
	checkIn := fs.String("in", "", "check-in date (YYYY-MM-DD)")
	checkOut := fs.String("out", "", "check-out date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *villaID == "" || *checkIn == "" || *checkOut == "" {
		return errors.New("-villa, -in and -out are required")
	}

	client := hideaway.NewClient(*api, 10*time.Second)
	a, err := client.Availability(context.Background(), *villaID, *checkIn, *checkOut)
	if err != nil {
		return err
	}
	if a.Available {
		fmt.Fprintf(stdout, "%s is available\n", a.VillaID)
	} else {
		fmt.Fprintf(stdout, "%s is not available\n", a.VillaID)
	}
	return nil
}
