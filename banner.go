// Copyright 2025 The Flagon Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package flagon

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/common-nighthawk/go-figure"
	"golang.org/x/term"
)

// colorWriter wraps w so ANSI colors are downsampled to the terminal's
// capabilities, and stripped entirely outside development.
func (a *App) colorWriter(w io.Writer) *colorprofile.Writer {
	cpw := colorprofile.NewWriter(w, os.Environ())
	if a.environment != EnvironmentDevelopment {
		cpw.Profile = colorprofile.NoTTY
	}
	return cpw
}

// printStartupBanner renders the development banner: ASCII-art service
// name, the service details, and the route table. Nothing is printed in
// other environments or when the banner is disabled.
func (a *App) printStartupBanner(addr, protocol string) {
	if !a.showBanner || a.environment != EnvironmentDevelopment {
		return
	}
	w := a.colorWriter(os.Stdout)

	gradient := []string{"12", "14", "10", "11"}
	var art strings.Builder
	for _, line := range figure.NewFigure(a.serviceName, "", false).Slicify() {
		if strings.TrimSpace(line) == "" {
			art.WriteString("\n")
			continue
		}
		for i, ch := range line {
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(gradient[i%len(gradient)])).
				Bold(true)
			art.WriteString(style.Render(string(ch)))
		}
		art.WriteString("\n")
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Width(14).
		PaddingLeft(2)
	valueStyle := lipgloss.NewStyle().Bold(true)

	displayAddr := addr
	if strings.HasPrefix(addr, ":") {
		displayAddr = "0.0.0.0" + addr
	}
	scheme := "http://"
	if protocol == "HTTPS" {
		scheme = "https://"
	}
	displayAddr = scheme + displayAddr

	var info strings.Builder
	info.WriteString(labelStyle.Render("Version:") + "  " + valueStyle.Foreground(lipgloss.Color("14")).Render(a.version) + "\n")
	info.WriteString(labelStyle.Render("Environment:") + "  " + valueStyle.Foreground(lipgloss.Color("11")).Render(a.environment) + "\n")
	info.WriteString(labelStyle.Render("Address:") + "  " + valueStyle.Foreground(lipgloss.Color("10")).Render(displayAddr) + "\n")

	fmt.Fprintln(w)
	fmt.Fprint(w, art.String())
	fmt.Fprintln(w)
	fmt.Fprint(w, info.String())

	if len(a.router.Rules()) > 0 {
		fmt.Fprintln(w)
		a.renderRouteTable(w, 80)
	}
	fmt.Fprintln(w)
}

// PrintRoutes prints the registered routes as a table, for development
// and debugging. Colors follow the terminal's capabilities and are
// stripped outside development or when NO_COLOR is set.
func (a *App) PrintRoutes() {
	if len(a.router.Rules()) == 0 {
		fmt.Println("no routes registered")
		return
	}
	a.renderRouteTable(a.colorWriter(os.Stdout), 120)
}

var methodStyles = map[string]lipgloss.Style{
	"GET":     lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	"POST":    lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
	"PUT":     lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	"DELETE":  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	"PATCH":   lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
	"HEAD":    lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
	"OPTIONS": lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Bold(true),
}

func (a *App) renderRouteTable(w io.Writer, width int) {
	rules := a.router.Rules()
	if len(rules) == 0 {
		return
	}
	useColors := a.environment == EnvironmentDevelopment

	rows := make([][]string, 0, len(rules))
	maxMethods := len("Methods")
	maxRule := len("Rule")
	maxEndpoint := len("Endpoint")
	for _, r := range rules {
		plain := strings.Join(r.Methods(), ",")
		methods := plain
		if useColors {
			styled := make([]string, 0, len(r.Methods()))
			for _, m := range r.Methods() {
				if style, ok := methodStyles[m]; ok {
					styled = append(styled, style.Render(m))
				} else {
					styled = append(styled, m)
				}
			}
			methods = strings.Join(styled, ",")
		}
		maxMethods = max(maxMethods, len(plain))
		maxRule = max(maxRule, len(r.Pattern()))
		maxEndpoint = max(maxEndpoint, len(r.Endpoint()))
		rows = append(rows, []string{methods, r.Pattern(), r.Endpoint()})
	}

	// Borders, separators and cell padding around three columns.
	minWidth := 2 + 2 + 6 + maxMethods + maxRule + maxEndpoint

	terminalWidth := width
	if file, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(int(file.Fd())); err == nil && tw > 0 {
			terminalWidth = tw
		}
	}
	tableWidth := max(minWidth, width)
	if terminalWidth > 0 {
		tableWidth = min(tableWidth, terminalWidth)
	}
	tableWidth = max(60, tableWidth)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(func() lipgloss.Style {
			if useColors {
				return lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
			}
			return lipgloss.NewStyle()
		}()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			style := lipgloss.NewStyle().Align(lipgloss.Left).Padding(0, 1)
			if row == 0 && useColors {
				style = style.Bold(true).Foreground(lipgloss.Color("230"))
			}
			return style
		}).
		Headers("Methods", "Rule", "Endpoint").
		Rows(rows...).
		Width(tableWidth)

	fmt.Fprintln(w, t.Render())
}
