/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package input

// Battery voltage divider and Li-ion charge-curve constants. The divider
// is 100K/100K (1:1), read through an ADC that measures 0-2500mV; the
// actual cell voltage is double the ADC reading.
const (
	dividerMult = 2

	vbatFullMV  = 4200
	vbatEmptyMV = 3000
)

// ADCToBatteryMV converts a calibrated ADC millivolt reading to actual
// battery millivolts.
func ADCToBatteryMV(adcMV uint16) uint16 {
	return uint16(uint32(adcMV) * dividerMult)
}

// BatteryPercentage maps a battery voltage to a 0-100 charge percentage
// using a linear approximation between the empty and full thresholds.
func BatteryPercentage(batteryMV uint16) uint8 {
	mv := uint32(batteryMV)
	switch {
	case mv >= vbatFullMV:
		return 100
	case mv <= vbatEmptyMV:
		return 0
	default:
		return uint8((mv - vbatEmptyMV) * 100 / (vbatFullMV - vbatEmptyMV))
	}
}
