//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  Selects the pure Go adaptive threshold when OpenCV is not available.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package subtract

// newAdaptive returns an adaptive Thresholder with a block x block
// neighbourhood.
func newAdaptive(block int) Thresholder { return newGaussAdaptive(block) }
