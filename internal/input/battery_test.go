/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package input

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestADCToBatteryMVDoublesReading(t *testing.T) {
	require.Equal(t, uint16(3400), ADCToBatteryMV(1700))
}

func TestBatteryPercentageFullAndEmptyClamp(t *testing.T) {
	require.Equal(t, uint8(100), BatteryPercentage(4200))
	require.Equal(t, uint8(100), BatteryPercentage(5000))
	require.Equal(t, uint8(0), BatteryPercentage(3000))
	require.Equal(t, uint8(0), BatteryPercentage(2500))
}

func TestBatteryPercentageLinearMidpoint(t *testing.T) {
	// halfway between 3000 and 4200 is 3600 -> 50%
	require.Equal(t, uint8(50), BatteryPercentage(3600))
}
