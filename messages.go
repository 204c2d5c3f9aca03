package cnclog

import "errors"

// userMessages maps engine sentinels to the Thai messages shown on the floor
// terminals. Keep the wording in sync with the terminal UI team.
var userMessages = []struct {
	err error
	msg string
}{
	{ErrDuplicateOpenJob, "มีงานที่ยังไม่ปิดสำหรับขั้นตอนนี้อยู่แล้ว กรุณาปิดงานเดิมก่อน"},
	{ErrInvalidTransition, "สถานะงานไม่ถูกต้องสำหรับคำสั่งนี้"},
	{ErrOutsideOvertimeWindow, "ไม่สามารถเริ่ม OT นอกช่วงเวลา 17:30 - 22:30 ได้"},
	{ErrOvertimeAlreadyOpen, "มีการเปิด OT ค้างอยู่แล้ว"},
	{ErrJobPaused, "งานอยู่ในสถานะ PAUSE กรุณากด Continue ก่อนปิดงาน"},
	{ErrJobNotFound, "ไม่พบงานที่ตรงกับข้อมูลที่ระบุ"},
	{ErrNoOpenPause, "ไม่พบการพักงานที่ค้างอยู่"},
	{ErrNoOpenOvertime, "ไม่พบการเปิด OT ที่ค้างอยู่"},
	{ErrCorruptSessionLog, "ข้อมูลบันทึกการพักงานเสียหาย กรุณาติดต่อหัวหน้างาน"},
	{ErrWriteFailed, "บันทึกข้อมูลไม่สำเร็จ กรุณาลองใหม่อีกครั้ง"},
}

// UserMessage resolves err to the localized message the terminals display.
// Unknown errors fall back to a generic failure message so internal details
// never reach the shop floor.
func UserMessage(err error) string {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return "เกิดข้อผิดพลาดภายในระบบ กรุณาลองใหม่อีกครั้ง"
}
