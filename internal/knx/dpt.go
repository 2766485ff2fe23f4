// Package knx implements the KNX/EIB adapter of spec §4.7: one group
// address per configured zone/client control point, encoded with the
// standard KNX datapoint types, plus GroupValueRead answered from a local
// cache without involving the command router.
//
// vapourismo/knx-go is not exercised by any full pack repo; it is named
// here (not grounded) as the unambiguous idiomatic Go KNXnet/IP library —
// see the design ledger for the out-of-pack justification.
package knx

import (
	"math"

	"github.com/vapourismo/knx-go/knx/dpt"
)

// encodeBool packs a 1-bit switch value (DPT 1.001) — used for mute,
// repeat/shuffle and the control triggers (play/pause/next/previous).
func encodeBool(v bool) []byte {
	d := dpt.DPT_1001(v)
	return d.Pack()
}

func decodeBool(data []byte) (bool, error) {
	var d dpt.DPT_1001
	if err := d.Unpack(data); err != nil {
		return false, err
	}
	return bool(d), nil
}

// encodePercent packs a 0-100 scaling value (DPT 5.001) — used for volume.
func encodePercent(v int) []byte {
	d := dpt.DPT_5001(clampByte(v))
	return d.Pack()
}

func decodePercent(data []byte) (int, error) {
	var d dpt.DPT_5001
	if err := d.Unpack(data); err != nil {
		return 0, err
	}
	return int(math.Round(float64(d))), nil
}

// encodeCount packs an unscaled 0-255 byte (DPT 5.010) — used for playlist
// and track indices.
func encodeCount(v int) []byte {
	d := dpt.DPT_5010(clampByte(v))
	return d.Pack()
}

func decodeCount(data []byte) (int, error) {
	var d dpt.DPT_5010
	if err := d.Unpack(data); err != nil {
		return 0, err
	}
	return int(d), nil
}

// encodeLatency packs a 2-byte unsigned count (DPT 7.001) — used for
// client latency in milliseconds.
func encodeLatency(ms int) []byte {
	if ms < 0 {
		ms = 0
	}
	if ms > 65535 {
		ms = 65535
	}
	d := dpt.DPT_7001(ms)
	return d.Pack()
}

func decodeLatency(data []byte) (int, error) {
	var d dpt.DPT_7001
	if err := d.Unpack(data); err != nil {
		return 0, err
	}
	return int(d), nil
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
