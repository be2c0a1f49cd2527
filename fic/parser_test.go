package fic

import "testing"

func TestParserPublishesEnsembleLabelOnStableCycle(t *testing.T) {
	p := NewParser()

	// FIG 0/0: EId=0x1234, ChangeFlags=0 (stable), CIFcnt hi=3, lo=7.
	fig0 := FIG{Type: 0, Data: []byte{0x00, 0x12, 0x34, 0x03, 0x07}}

	label := make([]byte, 0, 1+2+16+2)
	label = append(label, 0x00)       // ext=0, C/N etc all zero
	label = append(label, 0x56, 0x78) // restated ensemble id
	label = append(label, []byte("Test Ensemble   ")...)
	label = append(label, 0x00, 0x00)
	fig1 := FIG{Type: 1, Data: label}

	var buf []byte
	buf = append(buf, byte(fig0.Type)<<5|byte(len(fig0.Data)))
	buf = append(buf, fig0.Data...)
	buf = append(buf, byte(fig1.Type)<<5|byte(len(fig1.Data)))
	buf = append(buf, fig1.Data...)
	buf = append(buf, 0xFF)

	p.Feed(buf)

	cfg := p.Current()
	if cfg.EnsembleId != 0x1234 {
		t.Fatalf("expected ensemble id 0x1234, got 0x%x", cfg.EnsembleId)
	}
	if cfg.EnsembleLabel.Text != "Test Ensemble" {
		t.Fatalf("expected label %q, got %q", "Test Ensemble", cfg.EnsembleLabel.Text)
	}
}
