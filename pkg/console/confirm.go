package console

import (
	"os"

	"github.com/charmbracelet/huh"
)

// isAccessibleMode reports whether interactive prompts should fall back to
// their screen-reader-friendly rendering.
func isAccessibleMode() bool {
	return os.Getenv("ACCESSIBLE") != "" ||
		os.Getenv("TERM") == "dumb" ||
		os.Getenv("NO_COLOR") != ""
}

// ConfirmAction shows an interactive yes/no prompt and reports the user's
// choice. Used ahead of destructive operations such as `apm deps uninstall`.
func ConfirmAction(title, affirmative, negative string) (bool, error) {
	var confirmed bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative(affirmative).
				Negative(negative).
				Value(&confirmed),
		),
	).WithAccessible(isAccessibleMode())

	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}
