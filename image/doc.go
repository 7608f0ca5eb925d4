// Package image builds and verifies fixed-size boot sector images.
//
// A boot image is laid out as the caller's payload, followed by zero padding,
// followed by the two signature bytes the firmware checks before transferring
// control:
//
//	[0, len(payload))               payload, unchanged
//	[len(payload), sectorSize-2)    0x00 padding
//	[sectorSize-2, sectorSize)      signature, low byte first (0x55 0xAA)
//
// Build and Verify are pure functions and are safe for concurrent use.
package image
