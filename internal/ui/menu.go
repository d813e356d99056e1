package ui

import (
	"fmt"
	"os"

	"github.com/geovetas/alteration-mapper-cli/internal/raster"
)

type menuOption struct {
	title   string
	handler func()
}

// ShowMenu displays the main menu and handles user input
func ShowMenu(eng raster.Engine) {
	menuOptions := []menuOption{
		{"Compute mineral indices (Fe, Clay, OH) with illumination correction", func() { RunMinerals(eng) }},
		{"Compute the full alteration index stack", func() { RunAlteration(eng) }},
		{"Reproject a raster and export its pixel table as CSV", func() { ExportTable(eng) }},
		{"Export pixel tables for a folder of rasters", func() { BatchExportTables(eng) }},
		{"Exit the application", func() { fmt.Println("Exiting..."); os.Exit(0) }},
	}

	for {
		fmt.Println("\033[34m===================\033[0m")
		for i, opt := range menuOptions {
			fmt.Printf("\033[34m%d. %s\033[0m\n", i+1, opt.title)
		}
		fmt.Println("\033[34mPlease enter your choice:\033[0m")

		var choice int
		_, err := fmt.Scan(&choice)
		if err != nil {
			fmt.Printf("\n\033[31mInvalid input. Please enter a number.\033[0m\n")
			fmt.Scanln() // Clear the buffer
			continue
		}

		if choice < 1 || choice > len(menuOptions) {
			fmt.Println("\033[31mInvalid choice. Please try again.\033[0m")
			continue
		}

		menuOptions[choice-1].handler()
	}
}
