package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"solarfarm-server/fleet"
)

const defaultOutput = "fleet.json"

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	listStyle = lipgloss.NewStyle().
			PaddingLeft(2)
)

type step int

const (
	stepDeviceID step = iota
	stepLabel
	stepZone
	stepPanelCount
	stepMaxOutput
	stepAnother
	stepComplete
)

type model struct {
	step         step
	devices      []fleet.DeviceSpec
	deviceID     string
	label        string
	zone         string
	panelCount   int
	maxOutputW   float64
	currentInput string
	message      string
	output       string
	quitting     bool
}

func initialModel(output string) model {
	return model{step: stepDeviceID, output: output}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyBackspace:
		if len(m.currentInput) > 0 {
			m.currentInput = m.currentInput[:len(m.currentInput)-1]
		}
		return m, nil
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyRunes, tea.KeySpace:
		m.currentInput += key.String()
		return m, nil
	}
	return m, nil
}

func (m model) submit() (tea.Model, tea.Cmd) {
	in := m.currentInput
	m.currentInput = ""
	m.message = ""

	switch m.step {
	case stepDeviceID:
		if in == "" {
			m.message = "device id cannot be empty"
			return m, nil
		}
		m.deviceID = in
		m.step = stepLabel
	case stepLabel:
		m.label = in
		if m.label == "" {
			m.label = m.deviceID
		}
		m.step = stepZone
	case stepZone:
		if in == "" {
			m.message = "zone cannot be empty"
			return m, nil
		}
		m.zone = in
		m.step = stepPanelCount
	case stepPanelCount:
		n, err := strconv.Atoi(in)
		if err != nil || n < 1 {
			m.message = "panel count must be a positive integer"
			return m, nil
		}
		m.panelCount = n
		m.step = stepMaxOutput
	case stepMaxOutput:
		w, err := strconv.ParseFloat(in, 64)
		if err != nil || w <= 0 {
			m.message = "rated output must be a positive number (watts)"
			return m, nil
		}
		m.maxOutputW = w
		m.devices = append(m.devices, m.buildSpec())
		m.step = stepAnother
	case stepAnother:
		switch in {
		case "y", "Y", "":
			m.deviceID, m.label, m.zone = "", "", ""
			m.step = stepDeviceID
		case "n", "N":
			if err := m.write(); err != nil {
				m.message = err.Error()
				return m, nil
			}
			m.step = stepComplete
			return m, tea.Quit
		default:
			m.message = "answer y or n"
		}
	}
	return m, nil
}

func (m model) buildSpec() fleet.DeviceSpec {
	spec := fleet.DeviceSpec{DeviceID: m.deviceID, Label: m.label}
	row := len(m.devices) + 1
	for i := 0; i < m.panelCount; i++ {
		spec.Panels = append(spec.Panels, fleet.PanelSpec{
			PanelID:    fmt.Sprintf("P-%s-%02d", m.zone, i+1),
			Row:        row,
			Col:        i + 1,
			Zone:       m.zone,
			MaxOutputW: m.maxOutputW,
		})
	}
	return spec
}

func (m model) write() error {
	// Run the same validation the server applies at startup
	if _, err := fleet.New(m.devices); err != nil {
		return err
	}
	b, err := json.MarshalIndent(m.devices, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.output, b, 0o644)
}

func (m model) View() string {
	if m.quitting {
		return "aborted\n"
	}

	s := titleStyle.Render("Solar fleet mapping setup") + "\n"
	for _, d := range m.devices {
		s += listStyle.Render(fmt.Sprintf("%s (%s): %d panels", d.DeviceID, d.Label, len(d.Panels))) + "\n"
	}
	if len(m.devices) > 0 {
		s += "\n"
	}

	switch m.step {
	case stepDeviceID:
		s += promptStyle.Render("Device id (e.g. ESP_01): ")
	case stepLabel:
		s += promptStyle.Render("Label (blank = device id): ")
	case stepZone:
		s += promptStyle.Render("Zone (e.g. A): ")
	case stepPanelCount:
		s += promptStyle.Render("Panels wired in series: ")
	case stepMaxOutput:
		s += promptStyle.Render("Rated output per panel (W): ")
	case stepAnother:
		s += promptStyle.Render("Add another device? [Y/n]: ")
	case stepComplete:
		return successStyle.Render(fmt.Sprintf("wrote %s (%d devices)", m.output, len(m.devices))) + "\n"
	}
	s += inputStyle.Render(m.currentInput)

	if m.message != "" {
		s += "\n" + errorStyle.Render(m.message)
	}
	return s + "\n"
}

func main() {
	output := defaultOutput
	if len(os.Args) > 1 {
		output = os.Args[1]
	}
	if _, err := tea.NewProgram(initialModel(output)).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "fleet-setup error: %v\n", err)
		os.Exit(1)
	}
}
