// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sockio

import (
	"code.hybscloud.com/kont"
)

// Reify converts a Cont-world connection protocol to Expr-world, so it can
// be stepped with Step and Advance or run with ExecExpr.
func Reify[A any](m kont.Eff[A]) kont.Expr[A] {
	return kont.Reify(m)
}

// Reflect converts an Expr-world connection protocol to Cont-world.
func Reflect[A any](m kont.Expr[A]) kont.Eff[A] {
	return kont.Reflect(m)
}
