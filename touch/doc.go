// Package touch turns raw resistive touch digitizer samples into screen
// coordinates.
//
// A digitizer reports two axes in its own integer range (typically 0..4095 for
// an XPT2046 / ADS7846 controller) plus a contact signal. The axes are not
// aligned with the display: on the common 3.5" Raspberry Pi panels the
// digitizer's X axis runs along the display's Y axis and vice versa.
//
// # Calibration
//
// Calibrator shows five crosshairs (four corners inset by 30 pixels and the
// centre) through a Prompter and records the raw position of each release:
//
//	cal, err := touch.LoadCalibration("touch_calibration.json")
//	if errors.Is(err, touch.ErrNoCalibration) {
//		c := &touch.Calibrator{Reader: touch.NewReader(dev), Prompter: screen, W: 480, H: 320}
//		cal, err = c.Run(ctx)
//		// ...
//		err = cal.Save("touch_calibration.json")
//	}
//
// The file holds the five screen and raw points:
//
//	{
//	  "screen_points": [[30, 30], [449, 30], [449, 289], [30, 289], [240, 160]],
//	  "raw_points": [[3900, 3850], ...]
//	}
//
// # Mapping
//
// Mapper uses the first and third pair (opposite corners) to build two
// independent linear interpolations with the axes swapped, and clamps the
// result to the screen:
//
//	m, _ := touch.NewMapper(cal, 480, 320, logger)
//	p := m.Map(rawX, rawY)
//
// # Input Devices
//
// Device reads Linux evdev nodes (/dev/input/eventN). Any Source delivering
// EV_ABS / EV_KEY events can drive a Reader.
package touch
