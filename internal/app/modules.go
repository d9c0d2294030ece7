// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"github.com/specialistvlad/tomoflow/internal/registry"
	"github.com/specialistvlad/tomoflow/modules/ufolaunch"
)

// coreModules is the definitive list of engine backends compiled into the
// tomoflow binary.
var coreModules = []registry.Module{
	&ufolaunch.Module{},
}
