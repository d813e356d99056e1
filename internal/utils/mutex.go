package utils

import "sync"

var gdalMu sync.Mutex

// ExecuteWithGDALMutex serializes GDAL warps issued from the batch worker pool.
// Concurrent runs own their datasets, but driver registration and block cache
// state inside GDAL are shared.
func ExecuteWithGDALMutex(fn func()) {
	gdalMu.Lock()
	defer gdalMu.Unlock()
	fn()
}
