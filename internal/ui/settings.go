package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"deskpet/internal/config"
)

// SettingsDialog manages the settings window
type SettingsDialog struct {
	app    fyne.App
	config *config.Manager
	onSave func(*config.Config)
}

// NewSettingsDialog creates a new settings dialog
func NewSettingsDialog(app fyne.App, cfg *config.Manager) *SettingsDialog {
	return &SettingsDialog{
		app:    app,
		config: cfg,
	}
}

// SetOnSave sets the callback run after the settings were persisted
func (s *SettingsDialog) SetOnSave(onSave func(*config.Config)) {
	s.onSave = onSave
}

// Show displays the settings dialog
func (s *SettingsDialog) Show() {
	cfg := s.config.Get()

	window := s.app.NewWindow("DeskPet Settings")
	window.Resize(fyne.NewSize(360, 300))

	// --- Click-through ---
	ctLabel := widget.NewLabel("Click-through")
	ctLabel.TextStyle = fyne.TextStyle{Bold: true}

	intervalBinding := binding.NewFloat()
	_ = intervalBinding.Set(float64(cfg.PollIntervalMs))
	intervalSlider := widget.NewSliderWithData(4, 100, intervalBinding)
	intervalSlider.Step = 1
	intervalValueLabel := widget.NewLabel(fmt.Sprintf("%d ms", cfg.PollIntervalMs))
	intervalBinding.AddListener(binding.NewDataListener(func() {
		v, _ := intervalBinding.Get()
		intervalValueLabel.SetText(fmt.Sprintf("%.0f ms", v))
	}))

	ctSection := container.NewVBox(
		ctLabel,
		container.NewHBox(widget.NewLabel("Poll interval"), layout.NewSpacer(), intervalValueLabel),
		intervalSlider,
	)

	// --- Display ---
	displayLabel := widget.NewLabel("Display")
	displayLabel.TextStyle = fyne.TextStyle{Bold: true}

	onTopCheck := widget.NewCheck("Always on top", nil)
	onTopCheck.SetChecked(cfg.AlwaysOnTop)

	scaleBinding := binding.NewFloat()
	_ = scaleBinding.Set(cfg.PetScale)
	scaleSlider := widget.NewSliderWithData(1, 8, scaleBinding)
	scaleSlider.Step = 1
	scaleValueLabel := widget.NewLabel(fmt.Sprintf("%.0fx", cfg.PetScale))
	scaleBinding.AddListener(binding.NewDataListener(func() {
		v, _ := scaleBinding.Get()
		scaleValueLabel.SetText(fmt.Sprintf("%.0fx", v))
	}))

	displaySection := container.NewVBox(
		displayLabel,
		onTopCheck,
		container.NewHBox(widget.NewLabel("Pet scale"), layout.NewSpacer(), scaleValueLabel),
		scaleSlider,
	)

	// --- Buttons ---
	saveBtn := widget.NewButton("Save", func() {
		interval, _ := intervalBinding.Get()
		scale, _ := scaleBinding.Get()

		err := s.config.Update(func(c *config.Config) {
			c.PollIntervalMs = int(interval)
			c.PetScale = scale
			c.AlwaysOnTop = onTopCheck.Checked
		})
		if err != nil {
			dialog.ShowError(err, window)
			return
		}

		if s.onSave != nil {
			s.onSave(s.config.Get())
		}

		dialog.ShowInformation("Saved", "Settings saved", window)
	})
	saveBtn.Importance = widget.HighImportance

	closeBtn := widget.NewButton("Close", func() {
		window.Close()
	})

	buttons := container.NewHBox(layout.NewSpacer(), saveBtn, closeBtn, layout.NewSpacer())

	content := container.NewVBox(
		ctSection,
		widget.NewSeparator(),
		displaySection,
		widget.NewSeparator(),
		widget.NewLabel("Config file: "+s.config.Path()),
		buttons,
	)

	window.SetContent(container.NewPadded(content))
	window.Show()
}
