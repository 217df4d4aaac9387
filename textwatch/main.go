package main

import (
	"errors"
	"log/slog"
	"machine"
	"net/netip"
	"strconv"
	"time"

	"github.com/harveysanders/picowatch/textwatch/app"
	"github.com/harveysanders/picowatch/textwatch/battery"
	"github.com/harveysanders/picowatch/textwatch/buttons"
	"github.com/harveysanders/picowatch/textwatch/indicator"
	"github.com/harveysanders/picowatch/textwatch/mqtt"
	"github.com/harveysanders/picowatch/textwatch/netlink"
	"github.com/harveysanders/picowatch/textwatch/settings"
	"tinygo.org/x/drivers/sharpmem"
)

// Set at build time, e.g.
//
//	tinygo flash -target=pico-w -ldflags="-X main.ssid=home -X main.pass=secret -X main.broker=10.0.0.9:1883" ./textwatch
var (
	ssid      string
	pass      string
	broker    string
	deviceID  = "textwatch"
	ntpHost   = netlink.DefaultNTPHost
	utcOffset = "180"   // minutes east of UTC
	manual    = "false" // up/down buttons adjust the time
)

// Panel wiring for a 144x168 LS013B7DH05 memory LCD.
const (
	lcdCS      = machine.GP17
	buttonUp   = machine.GP14
	buttonDown = machine.GP15
)

func main() {
	logger := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	display, err := configureDisplay()
	if err != nil {
		printErrForever(logger, "configure display", slog.String("reason", err.Error()))
	}

	watch := app.New(app.Options{
		Display:  display,
		Store:    settings.NewFlashStore(machine.Flash),
		Battery:  indicator.DefaultBatteryOptions,
		Location: location(logger),
		Logger:   logger,
	})
	watch.Start(time.Now())

	go battery.New(30*time.Second).Watch(time.Minute, watch)
	if on, _ := strconv.ParseBool(manual); on {
		logger.Info("buttons:manual-time")
		go buttons.Poll(buttonUp, buttonDown, watch)
	}
	go watch.RunClock(nil)
	go connect(logger, watch)

	watch.Run(nil)
}

// connect joins WiFi, syncs the clock and keeps the companion session up.
func connect(logger *slog.Logger, watch *app.App) {
	if ssid == "" {
		logger.Warn("netlink:disabled", slog.String("reason", "no ssid"))
		return
	}
	link, err := netlink.Up(netlink.Config{
		SSID:        ssid,
		Password:    pass,
		Hostname:    deviceID,
		MaxTCPPorts: 1,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("netlink:up", slog.String("err", err.Error()))
		return
	}
	go link.Serve()

	if _, err = link.Lease(netip.Addr{}); err != nil {
		logger.Error("netlink:lease", slog.String("err", err.Error()))
		return
	}
	if err = link.SyncTime(ntpHost); err != nil {
		logger.Error("ntp:sync", slog.String("err", err.Error()))
	} else {
		watch.Post(app.Tick{Time: time.Now()})
	}

	if broker == "" {
		return
	}
	c := mqtt.Client{
		ID:         deviceID,
		Logger:     logger,
		Timeout:    5 * time.Second,
		TCPBufSize: 2030, // MTU - ethhdr - iphdr - tcphdr
	}
	if err = c.Run(link.Stack(), broker, watch); err != nil {
		logger.Error("mqtt:run", slog.String("err", err.Error()))
	}
}

func configureDisplay() (*sharpmem.Device, error) {
	err := machine.SPI0.Configure(machine.SPIConfig{
		Frequency: 2000000,
		SCK:       machine.GP18,
		SDO:       machine.GP19,
		SDI:       machine.GP16,
		Mode:      0,
		LSBFirst:  true,
	})
	if err != nil {
		return nil, errors.New("configure SPI:" + err.Error())
	}
	lcdCS.Configure(machine.PinConfig{Mode: machine.PinOutput})
	display := sharpmem.New(machine.SPI0, lcdCS)
	display.Configure(sharpmem.ConfigLS013B7DH05)
	if err = display.Clear(); err != nil {
		return nil, errors.New("clear display:" + err.Error())
	}
	return &display, nil
}

// location turns the utcOffset linker flag into a fixed zone.
func location(logger *slog.Logger) *time.Location {
	minutes, err := strconv.Atoi(utcOffset)
	if err != nil {
		logger.Warn("config:utc-offset", slog.String("value", utcOffset), slog.String("err", err.Error()))
		minutes = 0
	}
	return time.FixedZone("local", minutes*60)
}

// printErrForever logs msg once a second. It blocks forever so the error
// shows up even if the serial monitor attaches late.
func printErrForever(logger *slog.Logger, msg string, args ...any) {
	for {
		logger.Error(msg, args...)
		time.Sleep(time.Second)
	}
}
