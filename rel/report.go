// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rel

import (
	"bytes"
	"math"
	"strings"

	"github.com/cpmech/gosl/io"
)

// width of the report box, including the borders
const boxWidth = 71

// Report writes the FOSM report: one block per limit-state function and, with two or more
// functions, the response correlations
func (o *FosmResults) Report(buf *bytes.Buffer) {
	for j, tag := range o.LsfTags {
		boxBorder(buf)
		boxLine(buf, io.Sf("  FOSM ANALYSIS RESULTS, LIMIT-STATE FUNCTION NUMBER   %-4d", tag))
		boxLine(buf, "")
		boxLine(buf, io.Sf("  Estimated mean: .................................... %-12.5g", o.Means[j]))
		if o.StdvOK[j] {
			boxLine(buf, io.Sf("  Estimated standard deviation: ...................... %-12.5g", o.Stdvs[j]))
		} else {
			boxLine(buf, io.Sf("  Estimated standard deviation: ...................... %-12s", "n/a"))
		}
		boxLine(buf, "")
		boxLine(buf, "      Rvtag        Importance measure (dgdx*stdv)")
		for _, i := range o.Ranking(j) {
			v := o.Importance[j][i]
			boxLine(buf, io.Sf("       %3d              %s%11.3e", o.RvTags[i], sign(v), math.Abs(v)))
		}
		boxLine(buf, "")
		boxBorder(buf)
		io.Ff(buf, "\n\n")
	}

	// response correlations
	if len(o.LsfTags) < 2 {
		return
	}
	boxBorder(buf)
	boxLine(buf, "  RESPONSE CORRELATION COEFFICIENTS")
	boxLine(buf, "")
	boxLine(buf, "   gFun   gFun     Correlation")
	for i := 0; i < len(o.LsfTags); i++ {
		for j := i + 1; j < len(o.LsfTags); j++ {
			c := o.Corr[i][j]
			if math.IsNaN(c) {
				boxLine(buf, io.Sf("    %3d    %3d      %11s", o.LsfTags[i], o.LsfTags[j], "n/a"))
				continue
			}
			boxLine(buf, io.Sf("    %3d    %3d     %s%11.7f", o.LsfTags[i], o.LsfTags[j], sign(c), math.Abs(c)))
		}
	}
	boxLine(buf, "")
	boxBorder(buf)
	io.Ff(buf, "\n\n")
}

func boxBorder(buf *bytes.Buffer) {
	io.Ff(buf, "%s\n", strings.Repeat("#", boxWidth))
}

func boxLine(buf *bytes.Buffer, content string) {
	pad := boxWidth - 2 - len([]rune(content))
	if pad < 1 {
		pad = 1
	}
	io.Ff(buf, "#%s%s#\n", content, strings.Repeat(" ", pad))
}

func sign(v float64) string {
	if v < 0 {
		return "-"
	}
	return " "
}
