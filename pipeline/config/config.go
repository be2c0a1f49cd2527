/*
NAME
  config.go

AUTHORS
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for the DAB/DAB+
// receiver pipeline.
package config

import "github.com/ausocean/utils/logging"

// SoftBitGen selects which differential-QPSK soft-bit generation strategy
// the OFDM demodulator uses, per spec §6 (`soft_bit_gen`).
type SoftBitGen int

const (
	SoftBitGen1 SoftBitGen = iota + 1
	SoftBitGen2
	SoftBitGen3
)

// Config holds every tunable of the receiver pipeline, per spec §6.
type Config struct {
	// Threshold is the null-symbol/phase-reference detection threshold
	// multiplier applied to mean power (`threshold`, default 3.0).
	Threshold float64

	// TIIFramesToCount is the number of NULL-symbol TII comb spectra
	// averaged before a TII detection is reported (`tiiFramesToCount`,
	// default 5).
	TIIFramesToCount int

	// SoftBitType selects the SOFTDEC1/2/3 strategy (`soft_bit_gen`).
	SoftBitType SoftBitGen

	// UseDCRemoval enables the Sample Reader's DC-blocking IIR
	// (`dc_removal`).
	UseDCRemoval bool

	// UseDCAvoidance is the `dc_avoidance` toggle. It is stored only: no
	// pipeline stage reads it, and the Sample Reader has no DC-avoidance
	// strategy.
	UseDCAvoidance bool

	// UseStrongestPeak is the `sync_on_strongest_peak` toggle. It is stored
	// only: phase-reference correlation always takes the global maximum,
	// and there is no first-peak-above-threshold mode.
	UseStrongestPeak bool

	// TIICollisions enables collision disambiguation for overlaid
	// same-MainId TII patterns (`tii_collisions`).
	TIICollisions bool

	// TIIThreshold is the minimum comb-correlation strength counted as a
	// detection (`tii_threshold`).
	TIIThreshold int

	// TIISubId is the `tii_subid` setting: one SubId (0..23), or -1 for
	// "any". Validate range-checks it, but the TII Detector does not read
	// it and reports every SubId that passes its threshold.
	TIISubId int

	// ScanMode, when true, inhibits MSC Backend creation while iterating
	// channels (`set_scan_mode`).
	ScanMode bool

	// Logger holds an implementation of the logging.Logger interface used
	// throughout the pipeline.
	Logger logging.Logger
}

// NewDefault returns a Config populated with the defaults named in
// spec §6.
func NewDefault(log logging.Logger) Config {
	return Config{
		Threshold:        3.0,
		TIIFramesToCount: 5,
		SoftBitType:      SoftBitGen1,
		UseDCRemoval:     true,
		TIISubId:         -1,
		Logger:           log,
	}
}

// Validate checks for invalid field combinations and defaults any unset
// or out-of-range fields, logging each correction.
func (c *Config) Validate() error {
	if c.Threshold <= 0 {
		c.LogInvalidField("Threshold", 3.0)
		c.Threshold = 3.0
	}
	if c.TIIFramesToCount <= 0 {
		c.LogInvalidField("TIIFramesToCount", 5)
		c.TIIFramesToCount = 5
	}
	switch c.SoftBitType {
	case SoftBitGen1, SoftBitGen2, SoftBitGen3:
	default:
		c.LogInvalidField("SoftBitType", SoftBitGen1)
		c.SoftBitType = SoftBitGen1
	}
	if c.TIISubId < -1 || c.TIISubId > 23 {
		c.LogInvalidField("TIISubId", -1)
		c.TIISubId = -1
	}
	return nil
}

// LogInvalidField logs that a config field was bad or unset, and what it
// was defaulted to.
func (c *Config) LogInvalidField(name string, def interface{}) {
	if c.Logger != nil {
		c.Logger.Info(name+" bad or unset, defaulting", name, def)
	}
}
