package register

import (
	_ "github.com/xxxsen/davbox/blobio/local"
	_ "github.com/xxxsen/davbox/blobio/mem"
	_ "github.com/xxxsen/davbox/blobio/s3"
)
