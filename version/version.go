// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package version

import "fmt"

// Current version of the processor
var Current = &Version{
	Major: 0,
	Minor: 3,
	Patch: 1,
}

// Version is a semantic version
type Version struct {
	Major int
	Minor int
	Patch int
}

func (v *Version) String() string {
	return fmt.Sprintf("atlas/%d.%d.%d", v.Major, v.Minor, v.Patch)
}
