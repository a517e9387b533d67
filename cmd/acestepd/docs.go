package main

// General API documentation for swaggo. Build with `-tags swagger` to serve it.
//
// @title           acestepd API
// @version         1.0
// @description     Control API for the ACE-Step launcher daemon: process
// @description     supervision, memory admission and security status.
//
// @contact.name   acestepd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
