/*
NAME
  config_test.go

AUTHORS
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import "testing"

type dumbLogger struct{}

func (dl *dumbLogger) Log(l int8, m string, a ...interface{})  {}
func (dl *dumbLogger) SetLevel(l int8)                         {}
func (dl *dumbLogger) Debug(msg string, args ...interface{})   {}
func (dl *dumbLogger) Info(msg string, args ...interface{})    {}
func (dl *dumbLogger) Warning(msg string, args ...interface{}) {}
func (dl *dumbLogger) Error(msg string, args ...interface{})   {}
func (dl *dumbLogger) Fatal(msg string, args ...interface{})   {}

func TestNewDefault(t *testing.T) {
	c := NewDefault(&dumbLogger{})
	if c.Threshold != 3.0 {
		t.Errorf("Threshold = %v, want 3.0", c.Threshold)
	}
	if c.TIIFramesToCount != 5 {
		t.Errorf("TIIFramesToCount = %v, want 5", c.TIIFramesToCount)
	}
	if c.SoftBitType != SoftBitGen1 {
		t.Errorf("SoftBitType = %v, want SoftBitGen1", c.SoftBitType)
	}
	if !c.UseDCRemoval {
		t.Error("UseDCRemoval = false, want true")
	}
	if c.TIISubId != -1 {
		t.Errorf("TIISubId = %v, want -1", c.TIISubId)
	}
}

func TestValidateDefaultsInvalidFields(t *testing.T) {
	c := Config{
		Threshold:        -1,
		TIIFramesToCount: 0,
		SoftBitType:      SoftBitGen(99),
		TIISubId:         42,
		Logger:           &dumbLogger{},
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}
	if c.Threshold != 3.0 {
		t.Errorf("Threshold = %v, want defaulted 3.0", c.Threshold)
	}
	if c.TIIFramesToCount != 5 {
		t.Errorf("TIIFramesToCount = %v, want defaulted 5", c.TIIFramesToCount)
	}
	if c.SoftBitType != SoftBitGen1 {
		t.Errorf("SoftBitType = %v, want defaulted SoftBitGen1", c.SoftBitType)
	}
	if c.TIISubId != -1 {
		t.Errorf("TIISubId = %v, want defaulted -1", c.TIISubId)
	}
}

func TestValidateLeavesGoodFieldsAlone(t *testing.T) {
	c := Config{
		Threshold:        4.5,
		TIIFramesToCount: 10,
		SoftBitType:      SoftBitGen3,
		TIISubId:         12,
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}
	if c.Threshold != 4.5 || c.TIIFramesToCount != 10 || c.SoftBitType != SoftBitGen3 || c.TIISubId != 12 {
		t.Errorf("Validate() altered already-valid fields: %+v", c)
	}
}

func TestValidateNilLoggerDoesNotPanic(t *testing.T) {
	c := Config{Threshold: -5}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}
	if c.Threshold != 3.0 {
		t.Errorf("Threshold = %v, want defaulted 3.0", c.Threshold)
	}
}
