package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/daybook/internal/common"
)

func (a *App) Register(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.Register(ctx, userName, string(password)); err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}

	printlnFn("Registered. You can now log in.")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.Login(ctx, userName, string(password)); err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	printlnFn("Login successful")
	return nil
}

func (a *App) Logout(_ context.Context) error {
	a.api.Logout()
	printlnFn("Logged out")
	return nil
}

func (a *App) View(ctx context.Context) error {
	resp, err := a.api.View(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	printBucket("Schedule", resp.Buckets.Schedule)
	printBucket("Dated", resp.Buckets.Dated)
	printBucket("Travel", resp.Buckets.Travel)
	printBucket("Other", resp.Buckets.Other)
	printlnFn(fmt.Sprintf("Travel events: %s", onOff(resp.Settings.TravelEnabled)))
	return nil
}

func printBucket(name string, lines []string) {
	if len(lines) == 0 {
		return
	}
	printlnFn(name + ":")
	for _, line := range lines {
		printlnFn("  " + line)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (a *App) Add(ctx context.Context) error {
	line, err := GetSimpleText(a.reader, "Enter line", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	if err := a.api.AddLine(ctx, line); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	printlnFn("Added")
	return nil
}

func (a *App) Reset(ctx context.Context) error {
	answer, err := GetSimpleText(a.reader, "Delete all lines? (yes/no)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if answer != "yes" {
		printlnFn("Cancelled")
		return nil
	}

	if err := a.api.Reset(ctx); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	printlnFn("All lines deleted")
	return nil
}

func (a *App) Travel(ctx context.Context) error {
	enabled, err := a.api.ToggleTravel(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	printlnFn(fmt.Sprintf("Travel events: %s", onOff(enabled)))
	return nil
}

func (a *App) Import(ctx context.Context) error {
	cursor := ""
	for {
		res, err := a.api.Import(ctx, cursor)
		if err != nil {
			log.Printf("error: %v", err)
			return err
		}
		printlnFn(fmt.Sprintf("Imported %d timed, %d dated, skipped %d",
			res.AddedTimed, res.AddedDated, res.Skipped))
		if res.NextCursor == "" {
			return nil
		}
		cursor = res.NextCursor
	}
}

func (a *App) Export(ctx context.Context) error {
	res, err := a.api.Export(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	printlnFn(fmt.Sprintf("Created %d events, skipped %d", res.Created, res.Skipped))
	return nil
}

func (a *App) Connect(ctx context.Context) error {
	url, err := a.api.ConnectURL(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	printlnFn("Open this URL in a browser to connect your calendar:")
	printlnFn(url)
	return nil
}

func (a *App) Disconnect(ctx context.Context) error {
	if err := a.api.Disconnect(ctx); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	printlnFn("Calendar disconnected")
	return nil
}

func (a *App) Feed(ctx context.Context) error {
	feed, err := a.api.Feed(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	printlnFn(feed)
	return nil
}
