package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/geovetas/alteration-mapper-cli/internal/notification"
	"github.com/geovetas/alteration-mapper-cli/internal/raster"
	"github.com/geovetas/alteration-mapper-cli/internal/ui"
	"github.com/joho/godotenv"
)

func printBanner() {
	figure1 := figure.NewFigure("Alteration", "isometric1", true)
	figure2 := figure.NewFigure("Mapper", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	bannercolor.Cyan(figure2.String())
	fmt.Println()
}

func initCLI() {
	defer func() {
		if r := recover(); r != nil {
			pc, file, line, ok := runtime.Caller(3) // 3 levels up is often the panic source
			var location string
			if ok {
				fn := runtime.FuncForPC(pc)
				location = fmt.Sprintf("%s:%d in %s", file, line, fn.Name())
			} else {
				location = "Unknown location"
			}

			fmt.Printf("\n\033[31mPANIC: %v\033[0m\n", r)
			fmt.Printf("\033[31mLocation: %s\033[0m\n", location)
			fmt.Printf("\033[31mPlease check the input and try again.\033[0m\n")
			fmt.Printf("\033[31mExiting...\033[0m\n")

			stack := debug.Stack()
			errMessage := fmt.Sprintf("Alteration Mapper CLI panic:\n\n%v\n\nLocation: %s\n\nStack trace:\n%s", r, location, stack)
			err := notification.SendDiscordErrorNotification(errMessage)
			if err != nil {
				fmt.Printf("\033[31mFailed to send notification: %s\033[0m\n", err.Error())
			}
		}
	}()

	printBanner()
	ui.ShowMenu(raster.NewGDALEngine())
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		// The environment may already carry the configuration.
		fmt.Printf("\033[33mNo .env file found, using the process environment.\033[0m\n")
	}
	initCLI()
}
