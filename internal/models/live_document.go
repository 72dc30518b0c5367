package models

// LiveDocument 外部缓存（drone:live 键）中的嵌套传感器文档
// 由设备侧上传脚本写入，字段缺失属于正常情况
type LiveDocument struct {
	Timestamp string `json:"timestamp"`
	MPU6050   struct {
		Accel struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
			Z float64 `json:"z"`
		} `json:"accel"`
		Gyro struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
			Z float64 `json:"z"`
		} `json:"gyro"`
		CalculatedAngles struct {
			Pitch *float64 `json:"pitch"`
			Roll  *float64 `json:"roll"`
			Yaw   *float64 `json:"yaw"`
		} `json:"calculated_angles"`
	} `json:"mpu6050"`
	DHT22 struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"dht22"`
	Status string `json:"status"`
}
